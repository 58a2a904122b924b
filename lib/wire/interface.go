package wire

import (
	"errors"
	"reflect"

	"github.com/ValentinKolb/dIO/lib/buffer"
	"github.com/ValentinKolb/dIO/lib/datatype"
	"github.com/ValentinKolb/dIO/lib/field"
)

// --------------------------------------------------------------------------
// Constants and errors
// --------------------------------------------------------------------------

const (
	// ProducerName identifies streams written by the BinarySerialiser
	ProducerName = "dIO.BinarySerialiser"
	// VersionMajor must match between writer and reader
	VersionMajor byte = 1
	// VersionMinor is informational
	VersionMinor byte = 0
	// VersionMicro is informational
	VersionMicro byte = 0

	// RootNodeName is the name of the synthetic root returned by ParseIoStream
	RootNodeName = "ROOT"
	// RootEndName is the name of the end marker closing a stream
	RootEndName = "OBJ_ROOT_END"
)

var (
	// ErrHeaderMismatch is returned if the producer or the major version of a stream does not match
	ErrHeaderMismatch = errors.New("header info mismatch")
	// ErrMalformedStream is returned for truncated or structurally corrupt streams
	ErrMalformedStream = errors.New("malformed stream")
	// ErrUnknownEnumValue is returned if an enum name (and ordinal) is not valid for the target type
	ErrUnknownEnumValue = errors.New("unknown enum value")
)

// HeaderInfo is the protocol identification found at the start of a stream
type HeaderInfo struct {
	Producer string
	Major    byte
	Minor    byte
	Micro    byte
	// Root is the start marker following the version stamp, its name is the type hint
	Root *field.WireDataFieldDescription
}

// EnumInfo is the payload of an ENUM field
type EnumInfo struct {
	Type    string
	Name    string
	Ordinal int
}

// String implements fmt.Stringer
func (e EnumInfo) String() string {
	return e.Type + "." + e.Name
}

// --------------------------------------------------------------------------
// IoSerialiser interface
// --------------------------------------------------------------------------

// IoSerialiser is the protocol layer of the wire format. Put methods write a complete
// field (header and payload), Get methods read a payload from the current position.
type IoSerialiser interface {
	// Buffer returns the underlying buffer
	Buffer() buffer.IoBuffer
	// SetBuffer replaces the underlying buffer
	SetBuffer(buf buffer.IoBuffer)
	// SetEnforceSimpleStringEncoding switches the buffer between ISO-8859-1 and UTF-8 strings
	SetEnforceSimpleStringEncoding(state bool)

	// PutHeaderInfo writes the protocol stamp and opens the root start marker named typeHint
	PutHeaderInfo(typeHint string) *field.WireDataFieldDescription
	// CheckHeaderInfo reads and validates the protocol stamp and the root start marker
	CheckHeaderInfo() (HeaderInfo, error)
	// PutFieldHeader writes a field header with an open data size
	PutFieldHeader(name string, dataType datatype.DataType) *field.WireDataFieldDescription
	// UpdateDataEndMarker back-patches the data size of fd to end at the current position
	UpdateDataEndMarker(fd *field.WireDataFieldDescription)
	// GetFieldHeader reads a field header and positions the buffer at the payload
	GetFieldHeader() (*field.WireDataFieldDescription, error)
	// PutStartMarker opens a nested region
	PutStartMarker(name string) *field.WireDataFieldDescription
	// PutEndMarker closes the innermost open nested region
	PutEndMarker(name string)
	// ParseIoStream parses the stream from the current position into a field tree
	ParseIoStream(readHeader bool) (*field.WireDataFieldDescription, error)

	PutBool(name string, v bool)
	PutByte(name string, v byte)
	PutInt16(name string, v int16)
	PutUint16(name string, v uint16)
	PutInt32(name string, v int32)
	PutInt64(name string, v int64)
	PutFloat32(name string, v float32)
	PutFloat64(name string, v float64)
	PutString(name string, v string)

	GetBool() bool
	GetByte() byte
	GetInt16() int16
	GetUint16() uint16
	GetInt32() int32
	GetInt64() int64
	GetFloat32() float32
	GetFloat64() float64
	GetString() string

	// Put…Array write the array size descriptor (dims, default [len(v)]) and the
	// first product(dims) elements of v
	PutBoolArray(name string, v []bool, dims ...int) error
	PutByteArray(name string, v []byte, dims ...int) error
	PutInt16Array(name string, v []int16, dims ...int) error
	PutUint16Array(name string, v []uint16, dims ...int) error
	PutInt32Array(name string, v []int32, dims ...int) error
	PutInt64Array(name string, v []int64, dims ...int) error
	PutFloat32Array(name string, v []float32, dims ...int) error
	PutFloat64Array(name string, v []float64, dims ...int) error
	PutStringArray(name string, v []string, dims ...int) error

	GetBoolArray(dst []bool) []bool
	GetByteArray(dst []byte) []byte
	GetInt16Array(dst []int16) []int16
	GetUint16Array(dst []uint16) []uint16
	GetInt32Array(dst []int32) []int32
	GetInt64Array(dst []int64) []int64
	GetFloat32Array(dst []float32) []float32
	GetFloat64Array(dst []float64) []float64
	GetStringArray(dst []string) []string

	// PutCollection writes a slice as LIST, the elements must map to a scalar DataType or ENUM
	PutCollection(name string, v reflect.Value) error
	// GetCollection reads a LIST payload into the settable slice dst
	GetCollection(dst reflect.Value) error
	// PutMap writes a map as MAP, keys and values must map to a scalar DataType or ENUM
	PutMap(name string, v reflect.Value) error
	// GetMap reads a MAP payload into the settable map dst (allocated if nil)
	GetMap(dst reflect.Value) error
	// PutSet writes the keys of a map[K]struct{} as SET
	PutSet(name string, v reflect.Value) error
	// GetSet reads a SET payload into the settable map[K]struct{} dst
	GetSet(dst reflect.Value) error
	// PutEnum writes an ENUM field
	PutEnum(name string, v datatype.EnumValue)
	// GetEnumInfo reads an ENUM payload
	GetEnumInfo() EnumInfo
	// GetEnum reads an ENUM payload into the settable enum value dst
	GetEnum(dst reflect.Value) error
}

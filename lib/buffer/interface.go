package buffer

import (
	"errors"
	"sync"
)

var (
	// ErrBufferUnderflow is recorded if a read needs more bytes than available before the limit
	ErrBufferUnderflow = errors.New("buffer underflow")
	// ErrInvalidPosition is returned if a position or limit violates 0 <= position <= limit <= capacity
	ErrInvalidPosition = errors.New("invalid buffer position")
	// ErrNegativeLength is recorded if an array or string length read from the buffer is negative
	ErrNegativeLength = errors.New("negative length")
)

// IoBuffer is the byte level transport used by the wire serialiser
type IoBuffer interface {
	// Position returns the index of the next byte to be read or written
	Position() int
	// SetPosition sets the position, it must be within [0, Limit()]
	SetPosition(position int) error
	// Limit returns the index of the first byte that should not be read
	Limit() int
	// SetLimit sets the limit, it must be within [0, Capacity()]. The position is clamped to the new limit.
	SetLimit(limit int) error
	// Capacity returns the size of the backing storage
	Capacity() int
	// Remaining returns Limit() - Position()
	Remaining() int
	// HasRemaining returns true if Remaining() > 0
	HasRemaining() bool

	// Reset sets the position to 0, the limit to the capacity and clears the error
	Reset()
	// Clear is an alias of Reset
	Clear()
	// Flip sets the limit to the current position and the position to 0
	Flip()
	// Elements returns the backing storage (len == Capacity())
	Elements() []byte
	// Bytes returns a copy of the bytes in [0, Limit())
	Bytes() []byte

	// EnsureCapacity grows the backing storage to at least capacity bytes, it never shrinks
	EnsureCapacity(capacity int)
	// ForceCapacity sets the backing storage to exactly capacity bytes. If preserve is
	// set the content up to min(capacity, Limit()) is kept.
	ForceCapacity(capacity int, preserve bool)
	// Trim shrinks the backing storage to requested bytes if Limit() <= requested < Capacity().
	// It reports whether the storage was changed.
	Trim(requested int) bool

	// Lock returns the read-write lock guarding a transaction of Put/Get calls
	Lock() *sync.RWMutex
	// Err returns the first error recorded by a read since the last Reset
	Err() error

	// IsEnforceSimpleStringEncoding reports whether strings are ISO-8859-1 encoded
	IsEnforceSimpleStringEncoding() bool
	// SetEnforceSimpleStringEncoding switches between ISO-8859-1 (true) and UTF-8 (false)
	SetEnforceSimpleStringEncoding(state bool)

	// scalar values
	PutBool(v bool)
	GetBool() bool
	PutByte(v byte)
	GetByte() byte
	PutInt16(v int16)
	GetInt16() int16
	PutUint16(v uint16)
	GetUint16() uint16
	PutInt32(v int32)
	GetInt32() int32
	PutInt64(v int64)
	GetInt64() int64
	PutFloat32(v float32)
	GetFloat32() float32
	PutFloat64(v float64)
	GetFloat64() float64
	PutString(v string)
	GetString() string

	// arrays (int32 length followed by the elements). Get methods reuse dst if it is large enough.
	PutBoolArray(src []bool)
	GetBoolArray(dst []bool) []bool
	PutByteArray(src []byte)
	GetByteArray(dst []byte) []byte
	PutInt16Array(src []int16)
	GetInt16Array(dst []int16) []int16
	PutUint16Array(src []uint16)
	GetUint16Array(dst []uint16) []uint16
	PutInt32Array(src []int32)
	GetInt32Array(dst []int32) []int32
	PutInt64Array(src []int64)
	GetInt64Array(dst []int64) []int64
	PutFloat32Array(src []float32)
	GetFloat32Array(dst []float32) []float32
	PutFloat64Array(src []float64)
	GetFloat64Array(dst []float64) []float64
	PutStringArray(src []string)
	GetStringArray(dst []string) []string

	// PutArraySizeDescriptor writes the number of dimensions followed by each extent
	PutArraySizeDescriptor(dims []int)
	// GetArraySizeDescriptor reads the dimensions written by PutArraySizeDescriptor
	GetArraySizeDescriptor() []int
}

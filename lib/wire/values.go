package wire

import (
	"fmt"

	"github.com/ValentinKolb/dIO/lib/datatype"
)

// --------------------------------------------------------------------------
// Scalars
// --------------------------------------------------------------------------

func putScalar[T any](s *BinarySerialiser, name string, dt datatype.DataType, v T, put func(T)) {
	fd := s.PutFieldHeader(name, dt)
	put(v)
	s.UpdateDataEndMarker(fd)
}

func (s *BinarySerialiser) PutBool(name string, v bool) {
	putScalar(s, name, datatype.Bool, v, s.buf.PutBool)
}

func (s *BinarySerialiser) PutByte(name string, v byte) {
	putScalar(s, name, datatype.Byte, v, s.buf.PutByte)
}

func (s *BinarySerialiser) PutInt16(name string, v int16) {
	putScalar(s, name, datatype.Short, v, s.buf.PutInt16)
}

func (s *BinarySerialiser) PutUint16(name string, v uint16) {
	putScalar(s, name, datatype.Char, v, s.buf.PutUint16)
}

func (s *BinarySerialiser) PutInt32(name string, v int32) {
	putScalar(s, name, datatype.Int, v, s.buf.PutInt32)
}

func (s *BinarySerialiser) PutInt64(name string, v int64) {
	putScalar(s, name, datatype.Long, v, s.buf.PutInt64)
}

func (s *BinarySerialiser) PutFloat32(name string, v float32) {
	putScalar(s, name, datatype.Float, v, s.buf.PutFloat32)
}

func (s *BinarySerialiser) PutFloat64(name string, v float64) {
	putScalar(s, name, datatype.Double, v, s.buf.PutFloat64)
}

func (s *BinarySerialiser) PutString(name string, v string) {
	putScalar(s, name, datatype.String, v, s.buf.PutString)
}

func (s *BinarySerialiser) GetBool() bool       { return s.buf.GetBool() }
func (s *BinarySerialiser) GetByte() byte       { return s.buf.GetByte() }
func (s *BinarySerialiser) GetInt16() int16     { return s.buf.GetInt16() }
func (s *BinarySerialiser) GetUint16() uint16   { return s.buf.GetUint16() }
func (s *BinarySerialiser) GetInt32() int32     { return s.buf.GetInt32() }
func (s *BinarySerialiser) GetInt64() int64     { return s.buf.GetInt64() }
func (s *BinarySerialiser) GetFloat32() float32 { return s.buf.GetFloat32() }
func (s *BinarySerialiser) GetFloat64() float64 { return s.buf.GetFloat64() }
func (s *BinarySerialiser) GetString() string   { return s.buf.GetString() }

// --------------------------------------------------------------------------
// Arrays
// --------------------------------------------------------------------------

// arrayDims validates dims against the number of available elements and returns
// the dims to write and the element count they describe
func arrayDims(n int, dims []int) ([]int, int, error) {
	if len(dims) == 0 {
		return []int{n}, n, nil
	}
	count := 1
	for _, d := range dims {
		if d < 0 {
			return nil, 0, fmt.Errorf("%w: negative dimension %d", ErrMalformedStream, d)
		}
		count *= d
	}
	if count > n {
		return nil, 0, fmt.Errorf("dimensions %v need %d elements, got %d", dims, count, n)
	}
	return dims, count, nil
}

func putArray[T any](s *BinarySerialiser, name string, dt datatype.DataType, v []T, dims []int, put func([]T)) error {
	dims, n, err := arrayDims(len(v), dims)
	if err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}
	fd := s.PutFieldHeader(name, dt)
	s.buf.PutArraySizeDescriptor(dims)
	put(v[:n])
	s.UpdateDataEndMarker(fd)
	return nil
}

func (s *BinarySerialiser) PutBoolArray(name string, v []bool, dims ...int) error {
	return putArray(s, name, datatype.BoolArray, v, dims, s.buf.PutBoolArray)
}

func (s *BinarySerialiser) PutByteArray(name string, v []byte, dims ...int) error {
	return putArray(s, name, datatype.ByteArray, v, dims, s.buf.PutByteArray)
}

func (s *BinarySerialiser) PutInt16Array(name string, v []int16, dims ...int) error {
	return putArray(s, name, datatype.ShortArray, v, dims, s.buf.PutInt16Array)
}

func (s *BinarySerialiser) PutUint16Array(name string, v []uint16, dims ...int) error {
	return putArray(s, name, datatype.CharArray, v, dims, s.buf.PutUint16Array)
}

func (s *BinarySerialiser) PutInt32Array(name string, v []int32, dims ...int) error {
	return putArray(s, name, datatype.IntArray, v, dims, s.buf.PutInt32Array)
}

func (s *BinarySerialiser) PutInt64Array(name string, v []int64, dims ...int) error {
	return putArray(s, name, datatype.LongArray, v, dims, s.buf.PutInt64Array)
}

func (s *BinarySerialiser) PutFloat32Array(name string, v []float32, dims ...int) error {
	return putArray(s, name, datatype.FloatArray, v, dims, s.buf.PutFloat32Array)
}

func (s *BinarySerialiser) PutFloat64Array(name string, v []float64, dims ...int) error {
	return putArray(s, name, datatype.DoubleArray, v, dims, s.buf.PutFloat64Array)
}

func (s *BinarySerialiser) PutStringArray(name string, v []string, dims ...int) error {
	return putArray(s, name, datatype.StringArray, v, dims, s.buf.PutStringArray)
}

// Get…Array skip the array size descriptor and read the elements,
// dst is reused if it is large enough

func (s *BinarySerialiser) GetBoolArray(dst []bool) []bool {
	s.buf.GetArraySizeDescriptor()
	return s.buf.GetBoolArray(dst)
}

func (s *BinarySerialiser) GetByteArray(dst []byte) []byte {
	s.buf.GetArraySizeDescriptor()
	return s.buf.GetByteArray(dst)
}

func (s *BinarySerialiser) GetInt16Array(dst []int16) []int16 {
	s.buf.GetArraySizeDescriptor()
	return s.buf.GetInt16Array(dst)
}

func (s *BinarySerialiser) GetUint16Array(dst []uint16) []uint16 {
	s.buf.GetArraySizeDescriptor()
	return s.buf.GetUint16Array(dst)
}

func (s *BinarySerialiser) GetInt32Array(dst []int32) []int32 {
	s.buf.GetArraySizeDescriptor()
	return s.buf.GetInt32Array(dst)
}

func (s *BinarySerialiser) GetInt64Array(dst []int64) []int64 {
	s.buf.GetArraySizeDescriptor()
	return s.buf.GetInt64Array(dst)
}

func (s *BinarySerialiser) GetFloat32Array(dst []float32) []float32 {
	s.buf.GetArraySizeDescriptor()
	return s.buf.GetFloat32Array(dst)
}

func (s *BinarySerialiser) GetFloat64Array(dst []float64) []float64 {
	s.buf.GetArraySizeDescriptor()
	return s.buf.GetFloat64Array(dst)
}

func (s *BinarySerialiser) GetStringArray(dst []string) []string {
	s.buf.GetArraySizeDescriptor()
	return s.buf.GetStringArray(dst)
}

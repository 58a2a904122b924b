package buffer

import (
	"encoding/binary"
)

// ByteBuffer is an IoBuffer using network byte order (big-endian)
type ByteBuffer struct {
	core
}

// NewByteBuffer creates an empty ByteBuffer in write mode (limit == capacity)
func NewByteBuffer(capacity int) *ByteBuffer {
	b := &ByteBuffer{}
	b.init(newStorage(capacity), binary.BigEndian)
	return b
}

// WrapByteBuffer creates a ByteBuffer in read mode on top of data (no copy)
func WrapByteBuffer(data []byte) *ByteBuffer {
	b := &ByteBuffer{}
	b.init(data, binary.BigEndian)
	return b
}

// --------------------------------------------------------------------------
// Array Methods (docu see buffer.IoBuffer)
// --------------------------------------------------------------------------

func (b *ByteBuffer) PutInt16Array(src []int16) { b.putInt16Array(src) }
func (b *ByteBuffer) GetInt16Array(dst []int16) []int16 { return b.getInt16Array(dst) }
func (b *ByteBuffer) PutUint16Array(src []uint16) { b.putUint16Array(src) }
func (b *ByteBuffer) GetUint16Array(dst []uint16) []uint16 { return b.getUint16Array(dst) }
func (b *ByteBuffer) PutInt32Array(src []int32) { b.putInt32Array(src) }
func (b *ByteBuffer) GetInt32Array(dst []int32) []int32 { return b.getInt32Array(dst) }
func (b *ByteBuffer) PutInt64Array(src []int64) { b.putInt64Array(src) }
func (b *ByteBuffer) GetInt64Array(dst []int64) []int64 { return b.getInt64Array(dst) }
func (b *ByteBuffer) PutFloat32Array(src []float32) { b.putFloat32Array(src) }
func (b *ByteBuffer) GetFloat32Array(dst []float32) []float32 { return b.getFloat32Array(dst) }
func (b *ByteBuffer) PutFloat64Array(src []float64) { b.putFloat64Array(src) }
func (b *ByteBuffer) GetFloat64Array(dst []float64) []float64 { return b.getFloat64Array(dst) }

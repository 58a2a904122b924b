package buffer

import (
	"encoding/binary"
	"unsafe"
)

// hostLittleEndian is true if the bulk memory copies produce little-endian data
var hostLittleEndian = func() bool {
	x := uint16(1)
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()

// FastByteBuffer is an IoBuffer using little-endian byte order. On little-endian hosts
// primitive arrays are copied as raw memory instead of element by element.
type FastByteBuffer struct {
	core
}

// NewFastByteBuffer creates an empty FastByteBuffer in write mode (limit == capacity)
func NewFastByteBuffer(capacity int) *FastByteBuffer {
	b := &FastByteBuffer{}
	b.init(newStorage(capacity), binary.LittleEndian)
	return b
}

// WrapFastByteBuffer creates a FastByteBuffer in read mode on top of data (no copy)
func WrapFastByteBuffer(data []byte) *FastByteBuffer {
	b := &FastByteBuffer{}
	b.init(data, binary.LittleEndian)
	return b
}

// --------------------------------------------------------------------------
// Bulk copy helpers
// --------------------------------------------------------------------------

// asBytes views a slice of fixed size primitives as raw bytes
func asBytes[T int16 | uint16 | int32 | int64 | float32 | float64](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(s[0])))
}

// putBulk writes the int32 length followed by the raw memory of src
func putBulk[T int16 | uint16 | int32 | int64 | float32 | float64](b *core, src []T) {
	raw := asBytes(src)
	b.PutInt32(int32(len(src)))
	start := b.reserve(len(raw))
	copy(b.data[start:], raw)
}

// getBulk reads an array written by putBulk into dst
func getBulk[T int16 | uint16 | int32 | int64 | float32 | float64](b *core, dst []T) []T {
	var zero T
	n, start, ok := b.claimArray(int(unsafe.Sizeof(zero)))
	if !ok {
		return dst[:0]
	}
	dst = resize(dst, n)
	copy(asBytes(dst), b.data[start:])
	return dst
}

// --------------------------------------------------------------------------
// Array Methods (docu see buffer.IoBuffer)
// --------------------------------------------------------------------------

func (b *FastByteBuffer) PutInt16Array(src []int16) {
	if hostLittleEndian {
		putBulk(&b.core, src)
		return
	}
	b.putInt16Array(src)
}

func (b *FastByteBuffer) GetInt16Array(dst []int16) []int16 {
	if hostLittleEndian {
		return getBulk(&b.core, dst)
	}
	return b.getInt16Array(dst)
}

func (b *FastByteBuffer) PutUint16Array(src []uint16) {
	if hostLittleEndian {
		putBulk(&b.core, src)
		return
	}
	b.putUint16Array(src)
}

func (b *FastByteBuffer) GetUint16Array(dst []uint16) []uint16 {
	if hostLittleEndian {
		return getBulk(&b.core, dst)
	}
	return b.getUint16Array(dst)
}

func (b *FastByteBuffer) PutInt32Array(src []int32) {
	if hostLittleEndian {
		putBulk(&b.core, src)
		return
	}
	b.putInt32Array(src)
}

func (b *FastByteBuffer) GetInt32Array(dst []int32) []int32 {
	if hostLittleEndian {
		return getBulk(&b.core, dst)
	}
	return b.getInt32Array(dst)
}

func (b *FastByteBuffer) PutInt64Array(src []int64) {
	if hostLittleEndian {
		putBulk(&b.core, src)
		return
	}
	b.putInt64Array(src)
}

func (b *FastByteBuffer) GetInt64Array(dst []int64) []int64 {
	if hostLittleEndian {
		return getBulk(&b.core, dst)
	}
	return b.getInt64Array(dst)
}

func (b *FastByteBuffer) PutFloat32Array(src []float32) {
	if hostLittleEndian {
		putBulk(&b.core, src)
		return
	}
	b.putFloat32Array(src)
}

func (b *FastByteBuffer) GetFloat32Array(dst []float32) []float32 {
	if hostLittleEndian {
		return getBulk(&b.core, dst)
	}
	return b.getFloat32Array(dst)
}

func (b *FastByteBuffer) PutFloat64Array(src []float64) {
	if hostLittleEndian {
		putBulk(&b.core, src)
		return
	}
	b.putFloat64Array(src)
}

func (b *FastByteBuffer) GetFloat64Array(dst []float64) []float64 {
	if hostLittleEndian {
		return getBulk(&b.core, dst)
	}
	return b.getFloat64Array(dst)
}

package buffer

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// DefaultCapacity is used if a buffer is created with a capacity <= 0
	DefaultCapacity = 1024
	// minGrowth is the smallest number of bytes the storage grows by
	minGrowth = 64
)

// --------------------------------------------------------------------------
// Shared buffer core (used by ByteBuffer and FastByteBuffer)
// --------------------------------------------------------------------------

// core implements everything but the byte order specific array encodings
type core struct {
	data          []byte
	position      int
	limit         int
	order         binary.ByteOrder
	lock          sync.RWMutex
	err           error
	simpleStrings bool
}

// init sets up the backing storage, a buffer wrapping existing data starts in read mode
func (b *core) init(data []byte, order binary.ByteOrder) {
	b.data = data
	b.position = 0
	b.limit = len(data)
	b.order = order
}

// newStorage returns zeroed storage of the requested capacity (DefaultCapacity if <= 0)
func newStorage(capacity int) []byte {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return make([]byte, capacity)
}

// --------------------------------------------------------------------------
// Position, limit and capacity
// --------------------------------------------------------------------------

func (b *core) Position() int { return b.position }

func (b *core) SetPosition(position int) error {
	if position < 0 || position > b.limit {
		return fmt.Errorf("%w: position %d outside [0, %d]", ErrInvalidPosition, position, b.limit)
	}
	b.position = position
	return nil
}

func (b *core) Limit() int { return b.limit }

func (b *core) SetLimit(limit int) error {
	if limit < 0 || limit > len(b.data) {
		return fmt.Errorf("%w: limit %d outside [0, %d]", ErrInvalidPosition, limit, len(b.data))
	}
	b.limit = limit
	if b.position > limit {
		b.position = limit
	}
	return nil
}

func (b *core) Capacity() int { return len(b.data) }

func (b *core) Remaining() int { return b.limit - b.position }

func (b *core) HasRemaining() bool { return b.position < b.limit }

func (b *core) Reset() {
	b.position = 0
	b.limit = len(b.data)
	b.err = nil
}

func (b *core) Clear() { b.Reset() }

func (b *core) Flip() {
	b.limit = b.position
	b.position = 0
}

func (b *core) Elements() []byte { return b.data }

func (b *core) Bytes() []byte {
	out := make([]byte, b.limit)
	copy(out, b.data[:b.limit])
	return out
}

func (b *core) EnsureCapacity(capacity int) {
	if capacity <= len(b.data) {
		return
	}
	b.ForceCapacity(capacity, true)
}

func (b *core) ForceCapacity(capacity int, preserve bool) {
	if capacity < 0 {
		capacity = 0
	}
	if capacity == len(b.data) {
		return
	}
	grown := len(b.data) == b.limit
	data := make([]byte, capacity)
	if preserve {
		copy(data, b.data[:min(capacity, b.limit)])
	}
	b.data = data

	// a buffer in write mode (limit == capacity) keeps following the capacity
	if grown || b.limit > capacity {
		b.limit = capacity
	}
	if b.position > b.limit {
		b.position = b.limit
	}
}

func (b *core) Trim(requested int) bool {
	if requested >= len(b.data) || requested < b.limit {
		return false
	}
	b.ForceCapacity(requested, true)
	return true
}

func (b *core) Lock() *sync.RWMutex { return &b.lock }

func (b *core) Err() error { return b.err }

func (b *core) IsEnforceSimpleStringEncoding() bool { return b.simpleStrings }

func (b *core) SetEnforceSimpleStringEncoding(state bool) { b.simpleStrings = state }

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// reserve makes room for n bytes at the current position, advances the position
// and returns the offset to write to
func (b *core) reserve(n int) int {
	need := b.position + n
	if need > len(b.data) {
		b.ForceCapacity(max(need, 2*len(b.data), minGrowth), true)
	}
	if need > b.limit {
		b.limit = need
	}
	start := b.position
	b.position = need
	return start
}

// claim checks that n bytes can be read, advances the position and returns the offset
// to read from. On underflow the sticky error is set and ok is false.
func (b *core) claim(n int) (start int, ok bool) {
	if n < 0 {
		b.fail(fmt.Errorf("%w: %d at position %d", ErrNegativeLength, n, b.position))
		return 0, false
	}
	if b.position+n > b.limit {
		b.fail(fmt.Errorf("%w: need %d bytes at position %d, limit %d", ErrBufferUnderflow, n, b.position, b.limit))
		return 0, false
	}
	start = b.position
	b.position += n
	return start, true
}

// claimArray reads an int32 element count and claims count*size bytes
func (b *core) claimArray(size int) (count int, start int, ok bool) {
	count = int(b.GetInt32())
	if b.err != nil {
		return 0, 0, false
	}
	if count < 0 {
		b.fail(fmt.Errorf("%w: array length %d at position %d", ErrNegativeLength, count, b.position-4))
		return 0, 0, false
	}
	start, ok = b.claim(count * size)
	return count, start, ok
}

func (b *core) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// --------------------------------------------------------------------------
// Scalar values
// --------------------------------------------------------------------------

func (b *core) PutBool(v bool) {
	if v {
		b.PutByte(1)
	} else {
		b.PutByte(0)
	}
}

func (b *core) GetBool() bool { return b.GetByte() != 0 }

func (b *core) PutByte(v byte) {
	b.data[b.reserve(1)] = v
}

func (b *core) GetByte() byte {
	if start, ok := b.claim(1); ok {
		return b.data[start]
	}
	return 0
}

func (b *core) PutInt16(v int16) { b.PutUint16(uint16(v)) }

func (b *core) GetInt16() int16 { return int16(b.GetUint16()) }

func (b *core) PutUint16(v uint16) {
	start := b.reserve(2)
	b.order.PutUint16(b.data[start:], v)
}

func (b *core) GetUint16() uint16 {
	if start, ok := b.claim(2); ok {
		return b.order.Uint16(b.data[start:])
	}
	return 0
}

func (b *core) PutInt32(v int32) {
	start := b.reserve(4)
	b.order.PutUint32(b.data[start:], uint32(v))
}

func (b *core) GetInt32() int32 {
	if start, ok := b.claim(4); ok {
		return int32(b.order.Uint32(b.data[start:]))
	}
	return 0
}

func (b *core) PutInt64(v int64) {
	start := b.reserve(8)
	b.order.PutUint64(b.data[start:], uint64(v))
}

func (b *core) GetInt64() int64 {
	if start, ok := b.claim(8); ok {
		return int64(b.order.Uint64(b.data[start:]))
	}
	return 0
}

func (b *core) PutFloat32(v float32) {
	start := b.reserve(4)
	b.order.PutUint32(b.data[start:], math.Float32bits(v))
}

func (b *core) GetFloat32() float32 {
	if start, ok := b.claim(4); ok {
		return math.Float32frombits(b.order.Uint32(b.data[start:]))
	}
	return 0
}

func (b *core) PutFloat64(v float64) {
	start := b.reserve(8)
	b.order.PutUint64(b.data[start:], math.Float64bits(v))
}

func (b *core) GetFloat64() float64 {
	if start, ok := b.claim(8); ok {
		return math.Float64frombits(b.order.Uint64(b.data[start:]))
	}
	return 0
}

// --------------------------------------------------------------------------
// Strings
// --------------------------------------------------------------------------

// isASCII reports whether s can be written unchanged in both encodings
func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func (b *core) encodeString(v string) []byte {
	if !b.simpleStrings || isASCII(v) {
		return []byte(v)
	}
	// runes outside of ISO-8859-1 are replaced instead of failing the write
	encoded, err := encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder()).Bytes([]byte(v))
	if err != nil {
		return []byte(v)
	}
	return encoded
}

func (b *core) decodeString(raw []byte) string {
	if !b.simpleStrings {
		return string(raw)
	}
	for _, c := range raw {
		if c >= utf8.RuneSelf {
			decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
			if err != nil {
				return string(raw)
			}
			return string(decoded)
		}
	}
	return string(raw)
}

func (b *core) PutString(v string) {
	encoded := b.encodeString(v)
	b.PutInt32(int32(len(encoded)))
	start := b.reserve(len(encoded))
	copy(b.data[start:], encoded)
}

func (b *core) GetString() string {
	n := int(b.GetInt32())
	if b.err != nil {
		return ""
	}
	if start, ok := b.claim(n); ok {
		return b.decodeString(b.data[start : start+n])
	}
	return ""
}

func (b *core) PutStringArray(src []string) {
	b.PutInt32(int32(len(src)))
	for _, s := range src {
		b.PutString(s)
	}
}

func (b *core) GetStringArray(dst []string) []string {
	n := int(b.GetInt32())
	if b.err != nil {
		return dst[:0]
	}
	if n < 0 {
		b.fail(fmt.Errorf("%w: string array length %d", ErrNegativeLength, n))
		return dst[:0]
	}
	// every string needs at least its 4 byte length prefix
	if n*4 > b.Remaining() {
		b.fail(fmt.Errorf("%w: string array of %d elements exceeds %d remaining bytes", ErrBufferUnderflow, n, b.Remaining()))
		return dst[:0]
	}
	dst = resize(dst, n)
	for i := range dst {
		dst[i] = b.GetString()
	}
	return dst
}

// --------------------------------------------------------------------------
// Array size descriptor
// --------------------------------------------------------------------------

func (b *core) PutArraySizeDescriptor(dims []int) {
	b.PutInt32(int32(len(dims)))
	for _, d := range dims {
		b.PutInt32(int32(d))
	}
}

func (b *core) GetArraySizeDescriptor() []int {
	n := int(b.GetInt32())
	if b.err != nil {
		return nil
	}
	if n < 0 || n*4 > b.Remaining() {
		b.fail(fmt.Errorf("%w: array size descriptor with %d dimensions", ErrBufferUnderflow, n))
		return nil
	}
	dims := make([]int, n)
	for i := range dims {
		dims[i] = int(b.GetInt32())
	}
	return dims
}

// --------------------------------------------------------------------------
// Element-wise array encoding (ByteBuffer and FastByteBuffer fallback)
// --------------------------------------------------------------------------

// resize returns dst with length n, reusing its storage when possible
func resize[T any](dst []T, n int) []T {
	if cap(dst) >= n && dst != nil {
		return dst[:n]
	}
	return make([]T, n)
}

func (b *core) PutBoolArray(src []bool) {
	b.PutInt32(int32(len(src)))
	start := b.reserve(len(src))
	for i, v := range src {
		if v {
			b.data[start+i] = 1
		} else {
			b.data[start+i] = 0
		}
	}
}

func (b *core) GetBoolArray(dst []bool) []bool {
	n, start, ok := b.claimArray(1)
	if !ok {
		return dst[:0]
	}
	dst = resize(dst, n)
	for i := range dst {
		dst[i] = b.data[start+i] != 0
	}
	return dst
}

func (b *core) PutByteArray(src []byte) {
	b.PutInt32(int32(len(src)))
	start := b.reserve(len(src))
	copy(b.data[start:], src)
}

func (b *core) GetByteArray(dst []byte) []byte {
	n, start, ok := b.claimArray(1)
	if !ok {
		return dst[:0]
	}
	dst = resize(dst, n)
	copy(dst, b.data[start:start+n])
	return dst
}

func (b *core) putInt16Array(src []int16) {
	b.PutInt32(int32(len(src)))
	start := b.reserve(2 * len(src))
	for i, v := range src {
		b.order.PutUint16(b.data[start+2*i:], uint16(v))
	}
}

func (b *core) getInt16Array(dst []int16) []int16 {
	n, start, ok := b.claimArray(2)
	if !ok {
		return dst[:0]
	}
	dst = resize(dst, n)
	for i := range dst {
		dst[i] = int16(b.order.Uint16(b.data[start+2*i:]))
	}
	return dst
}

func (b *core) putUint16Array(src []uint16) {
	b.PutInt32(int32(len(src)))
	start := b.reserve(2 * len(src))
	for i, v := range src {
		b.order.PutUint16(b.data[start+2*i:], v)
	}
}

func (b *core) getUint16Array(dst []uint16) []uint16 {
	n, start, ok := b.claimArray(2)
	if !ok {
		return dst[:0]
	}
	dst = resize(dst, n)
	for i := range dst {
		dst[i] = b.order.Uint16(b.data[start+2*i:])
	}
	return dst
}

func (b *core) putInt32Array(src []int32) {
	b.PutInt32(int32(len(src)))
	start := b.reserve(4 * len(src))
	for i, v := range src {
		b.order.PutUint32(b.data[start+4*i:], uint32(v))
	}
}

func (b *core) getInt32Array(dst []int32) []int32 {
	n, start, ok := b.claimArray(4)
	if !ok {
		return dst[:0]
	}
	dst = resize(dst, n)
	for i := range dst {
		dst[i] = int32(b.order.Uint32(b.data[start+4*i:]))
	}
	return dst
}

func (b *core) putInt64Array(src []int64) {
	b.PutInt32(int32(len(src)))
	start := b.reserve(8 * len(src))
	for i, v := range src {
		b.order.PutUint64(b.data[start+8*i:], uint64(v))
	}
}

func (b *core) getInt64Array(dst []int64) []int64 {
	n, start, ok := b.claimArray(8)
	if !ok {
		return dst[:0]
	}
	dst = resize(dst, n)
	for i := range dst {
		dst[i] = int64(b.order.Uint64(b.data[start+8*i:]))
	}
	return dst
}

func (b *core) putFloat32Array(src []float32) {
	b.PutInt32(int32(len(src)))
	start := b.reserve(4 * len(src))
	for i, v := range src {
		b.order.PutUint32(b.data[start+4*i:], math.Float32bits(v))
	}
}

func (b *core) getFloat32Array(dst []float32) []float32 {
	n, start, ok := b.claimArray(4)
	if !ok {
		return dst[:0]
	}
	dst = resize(dst, n)
	for i := range dst {
		dst[i] = math.Float32frombits(b.order.Uint32(b.data[start+4*i:]))
	}
	return dst
}

func (b *core) putFloat64Array(src []float64) {
	b.PutInt32(int32(len(src)))
	start := b.reserve(8 * len(src))
	for i, v := range src {
		b.order.PutUint64(b.data[start+8*i:], math.Float64bits(v))
	}
}

func (b *core) getFloat64Array(dst []float64) []float64 {
	n, start, ok := b.claimArray(8)
	if !ok {
		return dst[:0]
	}
	dst = resize(dst, n)
	for i := range dst {
		dst[i] = math.Float64frombits(b.order.Uint64(b.data[start+8*i:]))
	}
	return dst
}

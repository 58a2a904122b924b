package testing

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/ValentinKolb/dIO/lib/buffer"
)

// BufferFactory creates a new, empty buffer of the given capacity in write mode
type BufferFactory func(capacity int) buffer.IoBuffer

// RunIoBufferTests runs the conformance suite for an IoBuffer implementation
func RunIoBufferTests(t *testing.T, name string, factory BufferFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Scalars", func(t *testing.T) {
			testScalars(t, factory(16))
		})

		t.Run("Arrays", func(t *testing.T) {
			testArrays(t, factory(16))
		})

		t.Run("ArrayReuse", func(t *testing.T) {
			testArrayReuse(t, factory(64))
		})

		t.Run("Strings", func(t *testing.T) {
			testStrings(t, factory(8))
		})

		t.Run("ArraySizeDescriptor", func(t *testing.T) {
			testArraySizeDescriptor(t, factory(8))
		})

		t.Run("PositionInvariant", func(t *testing.T) {
			testPositionInvariant(t, factory(4))
		})

		t.Run("Capacity", func(t *testing.T) {
			testCapacity(t, factory(32))
		})

		t.Run("Underflow", func(t *testing.T) {
			testUnderflow(t, factory(16))
		})

		t.Run("Lock", func(t *testing.T) {
			testLock(t, factory(16))
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// checkInvariant fails the test if 0 <= position <= limit <= capacity is violated
func checkInvariant(t testing.TB, buf buffer.IoBuffer) {
	t.Helper()
	if buf.Position() < 0 || buf.Position() > buf.Limit() || buf.Limit() > buf.Capacity() {
		t.Fatalf("invariant violated: position=%d limit=%d capacity=%d", buf.Position(), buf.Limit(), buf.Capacity())
	}
}

func equalSlices[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testScalars(t *testing.T, buf buffer.IoBuffer) {
	buf.PutBool(true)
	buf.PutBool(false)
	buf.PutByte(0xAB)
	buf.PutInt16(-12345)
	buf.PutUint16(0xBEEF)
	buf.PutInt32(math.MinInt32)
	buf.PutInt64(math.MaxInt64)
	buf.PutFloat32(3.25)
	buf.PutFloat64(-math.Pi)
	checkInvariant(t, buf)

	buf.Flip()

	if !buf.GetBool() || buf.GetBool() {
		t.Error("bool values do not match")
	}
	if v := buf.GetByte(); v != 0xAB {
		t.Errorf("expected byte 0xAB, got %x", v)
	}
	if v := buf.GetInt16(); v != -12345 {
		t.Errorf("expected short -12345, got %d", v)
	}
	if v := buf.GetUint16(); v != 0xBEEF {
		t.Errorf("expected char 0xBEEF, got %x", v)
	}
	if v := buf.GetInt32(); v != math.MinInt32 {
		t.Errorf("expected int %d, got %d", math.MinInt32, v)
	}
	if v := buf.GetInt64(); v != math.MaxInt64 {
		t.Errorf("expected long %d, got %d", int64(math.MaxInt64), v)
	}
	if v := buf.GetFloat32(); v != 3.25 {
		t.Errorf("expected float 3.25, got %v", v)
	}
	if v := buf.GetFloat64(); v != -math.Pi {
		t.Errorf("expected double %v, got %v", -math.Pi, v)
	}
	if buf.HasRemaining() {
		t.Errorf("expected no remaining bytes, got %d", buf.Remaining())
	}
	if buf.Err() != nil {
		t.Errorf("unexpected error: %v", buf.Err())
	}
}

func testArrays(t *testing.T, buf buffer.IoBuffer) {
	bools := []bool{true, false, true}
	bytes := []byte{1, 2, 3, 255}
	shorts := []int16{-1, 0, 1, math.MaxInt16}
	chars := []uint16{'a', 'b', 0xFFFF}
	ints := []int32{math.MinInt32, 0, math.MaxInt32}
	longs := []int64{math.MinInt64, -1, math.MaxInt64}
	floats := []float32{1.5, -2.5, float32(math.Inf(1))}
	doubles := []float64{0.1, 0.2, math.MaxFloat64, math.SmallestNonzeroFloat64}
	strings := []string{"a", "", "special point"}

	buf.PutBoolArray(bools)
	buf.PutByteArray(bytes)
	buf.PutInt16Array(shorts)
	buf.PutUint16Array(chars)
	buf.PutInt32Array(ints)
	buf.PutInt64Array(longs)
	buf.PutFloat32Array(floats)
	buf.PutFloat64Array(doubles)
	buf.PutStringArray(strings)
	buf.PutFloat64Array([]float64{})
	checkInvariant(t, buf)

	buf.Flip()

	if v := buf.GetBoolArray(nil); !equalSlices(v, bools) {
		t.Errorf("bool array: expected %v, got %v", bools, v)
	}
	if v := buf.GetByteArray(nil); !equalSlices(v, bytes) {
		t.Errorf("byte array: expected %v, got %v", bytes, v)
	}
	if v := buf.GetInt16Array(nil); !equalSlices(v, shorts) {
		t.Errorf("short array: expected %v, got %v", shorts, v)
	}
	if v := buf.GetUint16Array(nil); !equalSlices(v, chars) {
		t.Errorf("char array: expected %v, got %v", chars, v)
	}
	if v := buf.GetInt32Array(nil); !equalSlices(v, ints) {
		t.Errorf("int array: expected %v, got %v", ints, v)
	}
	if v := buf.GetInt64Array(nil); !equalSlices(v, longs) {
		t.Errorf("long array: expected %v, got %v", longs, v)
	}
	if v := buf.GetFloat32Array(nil); !equalSlices(v, floats) {
		t.Errorf("float array: expected %v, got %v", floats, v)
	}
	if v := buf.GetFloat64Array(nil); !equalSlices(v, doubles) {
		t.Errorf("double array: expected %v, got %v", doubles, v)
	}
	if v := buf.GetStringArray(nil); !equalSlices(v, strings) {
		t.Errorf("string array: expected %v, got %v", strings, v)
	}
	if v := buf.GetFloat64Array(nil); v == nil || len(v) != 0 {
		t.Errorf("empty double array: expected non-nil empty slice, got %#v", v)
	}
	if buf.Err() != nil {
		t.Errorf("unexpected error: %v", buf.Err())
	}
}

func testArrayReuse(t *testing.T, buf buffer.IoBuffer) {
	buf.PutFloat64Array([]float64{1, 2, 3})
	buf.Flip()

	dst := make([]float64, 10)
	got := buf.GetFloat64Array(dst)
	if len(got) != 3 || &got[0] != &dst[0] {
		t.Errorf("expected the destination storage to be reused, got len=%d", len(got))
	}
}

func testStrings(t *testing.T, buf buffer.IoBuffer) {
	texts := []string{"", "plain ascii", "grüße", "µs ± 0.5", "日本語"}
	for _, s := range texts {
		buf.PutString(s)
	}
	buf.Flip()
	for _, s := range texts {
		if v := buf.GetString(); v != s {
			t.Errorf("utf-8: expected %q, got %q", s, v)
		}
	}

	// ISO-8859-1 keeps latin characters and replaces everything else
	buf.Reset()
	buf.SetEnforceSimpleStringEncoding(true)
	if !buf.IsEnforceSimpleStringEncoding() {
		t.Fatal("simple string encoding should be enabled")
	}
	buf.PutString("grüße")
	buf.PutString("µs ± 0.5")
	start := buf.Position()
	buf.PutString("日本")
	if encoded := buf.Position() - start; encoded != 4+2 {
		t.Errorf("expected one byte per rune for ISO-8859-1, got %d bytes", encoded-4)
	}
	buf.Flip()
	if v := buf.GetString(); v != "grüße" {
		t.Errorf("iso-8859-1: expected %q, got %q", "grüße", v)
	}
	if v := buf.GetString(); v != "µs ± 0.5" {
		t.Errorf("iso-8859-1: expected %q, got %q", "µs ± 0.5", v)
	}
	if v := buf.GetString(); v == "日本" || len([]rune(v)) != 2 {
		t.Errorf("iso-8859-1: expected two replacement characters, got %q", v)
	}
}

func testArraySizeDescriptor(t *testing.T, buf buffer.IoBuffer) {
	buf.PutArraySizeDescriptor([]int{2, 3, 4})
	buf.PutArraySizeDescriptor([]int{})
	buf.Flip()
	if dims := buf.GetArraySizeDescriptor(); !equalSlices(dims, []int{2, 3, 4}) {
		t.Errorf("expected dims [2 3 4], got %v", dims)
	}
	if dims := buf.GetArraySizeDescriptor(); len(dims) != 0 {
		t.Errorf("expected no dims, got %v", dims)
	}
}

func testPositionInvariant(t *testing.T, buf buffer.IoBuffer) {
	checkInvariant(t, buf)
	for i := 0; i < 100; i++ {
		buf.PutInt64(int64(i))
		checkInvariant(t, buf)
		buf.PutString("x")
		checkInvariant(t, buf)
	}
	buf.Flip()
	checkInvariant(t, buf)
	for buf.HasRemaining() && buf.Err() == nil {
		buf.GetInt64()
		checkInvariant(t, buf)
		buf.GetString()
		checkInvariant(t, buf)
	}

	if err := buf.SetPosition(buf.Limit() + 1); !errors.Is(err, buffer.ErrInvalidPosition) {
		t.Errorf("expected ErrInvalidPosition, got %v", err)
	}
	if err := buf.SetPosition(-1); !errors.Is(err, buffer.ErrInvalidPosition) {
		t.Errorf("expected ErrInvalidPosition, got %v", err)
	}
	if err := buf.SetLimit(buf.Capacity() + 1); !errors.Is(err, buffer.ErrInvalidPosition) {
		t.Errorf("expected ErrInvalidPosition, got %v", err)
	}

	// lowering the limit clamps the position
	_ = buf.SetPosition(buf.Limit())
	if err := buf.SetLimit(2); err != nil {
		t.Fatal(err)
	}
	if buf.Position() != 2 {
		t.Errorf("expected position to be clamped to 2, got %d", buf.Position())
	}
	checkInvariant(t, buf)
}

func testCapacity(t *testing.T, buf buffer.IoBuffer) {
	buf.PutInt64(42)
	buf.PutInt64(43)

	// ensureCapacity never shrinks
	buf.EnsureCapacity(8)
	if buf.Capacity() != 32 {
		t.Errorf("EnsureCapacity must not shrink, capacity is %d", buf.Capacity())
	}

	buf.EnsureCapacity(1024)
	if buf.Capacity() < 1024 {
		t.Errorf("expected capacity >= 1024, got %d", buf.Capacity())
	}
	checkInvariant(t, buf)

	// content survives growth and trimming
	buf.Flip()
	if !buf.Trim(16) {
		t.Error("expected trim to shrink the storage")
	}
	if buf.Capacity() != 16 {
		t.Errorf("expected capacity 16 after trim, got %d", buf.Capacity())
	}
	if buf.Trim(8) {
		t.Error("trim below the limit must not change the storage")
	}
	if v := buf.GetInt64(); v != 42 {
		t.Errorf("expected 42 after trim, got %d", v)
	}
	if v := buf.GetInt64(); v != 43 {
		t.Errorf("expected 43 after trim, got %d", v)
	}

	// forced shrink clamps limit and position
	buf.ForceCapacity(4, true)
	if buf.Capacity() != 4 || buf.Limit() > 4 {
		t.Errorf("unexpected state after ForceCapacity: capacity=%d limit=%d", buf.Capacity(), buf.Limit())
	}
	checkInvariant(t, buf)

	// writes grow the buffer
	buf.Reset()
	large := make([]float64, 1000)
	buf.PutFloat64Array(large)
	if buf.Capacity() < 8004 {
		t.Errorf("expected buffer to grow to at least 8004 bytes, got %d", buf.Capacity())
	}
	checkInvariant(t, buf)
}

func testUnderflow(t *testing.T, buf buffer.IoBuffer) {
	buf.PutInt16(7)
	buf.Flip()

	if v := buf.GetInt64(); v != 0 {
		t.Errorf("expected zero value on underflow, got %d", v)
	}
	if !errors.Is(buf.Err(), buffer.ErrBufferUnderflow) {
		t.Errorf("expected ErrBufferUnderflow, got %v", buf.Err())
	}
	if buf.Position() != 0 {
		t.Errorf("underflow must not move the position, got %d", buf.Position())
	}

	// the error is sticky until reset
	if v := buf.GetInt16(); v != 7 {
		t.Errorf("expected 7, got %d", v)
	}
	if buf.Err() == nil {
		t.Error("error should be sticky")
	}
	buf.Reset()
	if buf.Err() != nil {
		t.Error("reset should clear the error")
	}

	// negative array lengths are rejected
	buf.PutInt32(-5)
	buf.Flip()
	if v := buf.GetFloat64Array(nil); len(v) != 0 {
		t.Errorf("expected empty result, got %v", v)
	}
	if !errors.Is(buf.Err(), buffer.ErrNegativeLength) {
		t.Errorf("expected ErrNegativeLength, got %v", buf.Err())
	}
}

func testLock(t *testing.T, buf buffer.IoBuffer) {
	const writers = 8
	const perWriter = 100

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				// a record is only consistent if both puts happen in one transaction
				buf.Lock().Lock()
				buf.PutInt32(int32(w))
				buf.PutInt32(int32(w * 1000))
				buf.Lock().Unlock()
			}
		}(w)
	}
	wg.Wait()

	buf.Flip()
	for i := 0; i < writers*perWriter; i++ {
		w := buf.GetInt32()
		v := buf.GetInt32()
		if v != w*1000 {
			t.Fatalf("record %d interleaved: writer=%d value=%d", i, w, v)
		}
	}
	if buf.Err() != nil {
		t.Errorf("unexpected error: %v", buf.Err())
	}
}

package buffer_test

import (
	"testing"

	"github.com/ValentinKolb/dIO/lib/buffer"
	buftesting "github.com/ValentinKolb/dIO/lib/buffer/testing"
)

func Test(t *testing.T) {
	buftesting.RunIoBufferTests(t, "ByteBuffer", func(capacity int) buffer.IoBuffer {
		return buffer.NewByteBuffer(capacity)
	})
	buftesting.RunIoBufferTests(t, "FastByteBuffer", func(capacity int) buffer.IoBuffer {
		return buffer.NewFastByteBuffer(capacity)
	})
}

// TestByteOrder checks that the two implementations use their documented byte order
func TestByteOrder(t *testing.T) {
	big := buffer.NewByteBuffer(4)
	big.PutInt32(1)
	if big.Elements()[3] != 1 {
		t.Errorf("ByteBuffer should be big-endian, got % x", big.Elements()[:4])
	}

	little := buffer.NewFastByteBuffer(4)
	little.PutInt32(1)
	little.PutFloat64Array([]float64{1})
	if little.Elements()[0] != 1 {
		t.Errorf("FastByteBuffer should be little-endian, got % x", little.Elements()[:4])
	}

	// bulk copied arrays are readable by the element-wise little-endian decoder
	wrapped := buffer.WrapFastByteBuffer(little.Bytes())
	if v := wrapped.GetInt32(); v != 1 {
		t.Fatalf("expected 1, got %d", v)
	}
	if v := wrapped.GetFloat64Array(nil); len(v) != 1 || v[0] != 1 {
		t.Errorf("expected [1], got %v", v)
	}
}

func TestWrap(t *testing.T) {
	src := buffer.NewByteBuffer(0)
	src.PutString("wrapped")
	src.Flip()

	wrapped := buffer.WrapByteBuffer(src.Bytes())
	if wrapped.Limit() != wrapped.Capacity() || wrapped.Position() != 0 {
		t.Errorf("wrapped buffer should be in read mode: position=%d limit=%d", wrapped.Position(), wrapped.Limit())
	}
	if v := wrapped.GetString(); v != "wrapped" {
		t.Errorf("expected 'wrapped', got %q", v)
	}
}

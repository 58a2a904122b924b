// Package testing provides a reusable conformance suite for buffer.IoBuffer
// implementations.
//
// Every implementation registers itself with RunIoBufferTests from its own _test.go
// file, which guarantees that all buffers obey the same position/limit/capacity
// invariants, growth rules and encodings:
//
//	func Test(t *testing.T) {
//		buftesting.RunIoBufferTests(t, "ByteBuffer", func(capacity int) buffer.IoBuffer {
//			return buffer.NewByteBuffer(capacity)
//		})
//	}
package testing

// Package buffer provides the byte level transport of the dIO wire format.
//
// IoBuffer is a position/limit/capacity buffer. Writes advance the position and Flip
// turns a written buffer into a readable one. There are paired Put/Get methods for every
// primitive type, primitive arrays, strings, string arrays and array size descriptors
// (the dimensions of multi-dimensional arrays).
//
// Invariants:
//   - 0 <= Position() <= Limit() <= Capacity() holds after every call
//   - writes grow the backing storage on demand, EnsureCapacity never shrinks it
//   - a read past the limit returns the zero value, leaves the position unchanged and
//     records a sticky ErrBufferUnderflow that is returned by Err() until Reset/Clear
//
// Implementations:
//
//   - ByteBuffer: network byte order (big-endian), element-wise encoding.
//
//   - FastByteBuffer: little-endian, primitive arrays are copied in bulk when the host
//     is little-endian. Streams are not interchangeable with ByteBuffer streams.
//
// Thread Safety:
//
//	The buffer is not safe for concurrent use per call. A logically atomic sequence of
//	Put/Get calls has to be wrapped by the caller using the lock returned by Lock():
//
//	  buf.Lock().Lock()
//	  defer buf.Lock().Unlock()
//	  buf.PutInt32(42)
//	  buf.PutString("answer")
//
// String Encoding:
//
//	SetEnforceSimpleStringEncoding(true) switches strings from UTF-8 to ISO-8859-1.
//	Runes outside of ISO-8859-1 are replaced. The framing (int32 length + bytes) is the
//	same for both encodings.
package buffer

// Package serializer provides a byte slice façade over the dIO class serialiser. It defines
// a common interface and multiple implementations so the self-describing binary format
// can be compared against the encodings of the standard library.
//
// Key Components:
//
//   - ISerializer: Core interface that all serializer implementations must satisfy.
//
//   - binarySerializerImpl: The dIO wire format. Values are written by a
//     codec.ClassSerialiser resolved against Registry(), which holds the builtin field
//     serialisers plus the DataSet serialisers. The stream carries field names, types
//     and sizes, so a reader tolerates added or removed fields.
//
//   - gobSerializerImpl: Implementation using Go's built-in gob encoding.
//
//   - jsonSerializerImpl: Implementation using JSON encoding, useful for debugging
//     or interoperability with other systems.
//
// Performance Characteristics:
//
//   - Binary: Primitive arrays are written as raw blocks (bulk memory copies with the
//     fast buffer kind), which makes it the fastest choice for numeric payloads. Every
//     field carries a header (type, name hash, offset, size, name), so small records
//     are larger than their gob encoding.
//
//   - JSON: Human-readable, but numeric arrays are expensive to format and parse.
//
//   - GOB: Compact once the type has been transmitted, but every Serialize call starts
//     a new stream and repeats the type description.
//
// Run `dio perf` or `go test -bench . ./lib/serializer` for numbers on your machine.
//
// Thread Safety:
//
//	All serializer implementations are safe for concurrent use. The binary serializer
//	keeps a sync.Pool of class serialisers, each owning its write buffer. Pooled
//	buffers larger than Config.MaxPooledCapacity are shrunk before reuse.
//
// Usage:
//
//	Serializers are typically created once and reused throughout the application:
//
//	  s := serializer.NewBinarySerializer()
//	  data, err := s.Serialize(&record)
//	  // ... send data ...
//	  var received Record
//	  err = s.Deserialize(data, &received)
package serializer

// Package wire implements the protocol layer of the dIO binary format on top of a
// buffer.IoBuffer.
//
// Every field is written as a field header followed by its payload:
//
//	FieldHeader := byte dataType, int32 nameHash, int32 dataStartOffset, int32 dataSize, string name
//
// dataStartOffset is relative to the header start and dataSize is back-patched once the
// payload is complete (see UpdateDataEndMarker), so a reader can skip any field without
// understanding it. Nested regions (objects, custom payloads) are bracketed by a start
// and an end marker. A complete stream looks like this:
//
//	HeaderInfo := string producer, byte major, byte minor, byte micro, StartMarker(typeHint)
//	Stream     := HeaderInfo { Field | StartMarker ... EndMarker } EndMarker("OBJ_ROOT_END")
//
// Arrays carry an array size descriptor (the dimensions) in front of the elements, so
// multi-dimensional data round-trips. Containers (LIST, MAP, SET) and enums have a
// built-in framing on top of the primitive layer.
//
// ParseIoStream performs a full structural parse of a stream into a
// field.WireDataFieldDescription tree without knowing the Go type the data was written
// from. The codec package uses this tree to match stream fields against struct fields.
//
// Key Components:
//
//   - IoSerialiser: the protocol interface.
//
//   - BinarySerialiser: the implementation writing to and reading from an IoBuffer.
//
//   - ReadValue: decodes a parsed leaf field into a Go value (used by `dio inspect`).
package wire

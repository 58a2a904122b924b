// Package codec maps Go values onto the dIO wire format by reflection.
//
// A ClassFieldDescription describes one field of a struct type (or the root type
// itself). Descriptors are built once per reflect.Type and cached in a Registry. The
// Registry also holds the FieldSerialisers: small (reader, writer, returner) values
// registered for a class prototype and, optionally, generic argument prototypes.
//
// Resolution (Registry.FindFieldSerialiser) tries an exact type match first, then
// assignability (interface implementations, named types of a registered basic kind),
// then the generic container prototypes ([]any, map[any]any, map[any]struct{}). Among
// several candidates the one whose generic prototypes fit the requested type arguments
// wins, otherwise the one that needs no generics. Results are cached.
//
// ClassSerialiser walks a value graph with the descriptors: fields with a serialiser are
// delegated to it, nested structs are framed with start and end markers, nil members
// are skipped. Deserialisation parses the stream into a field tree first and matches the
// parsed fields by name hash and name, so fields unknown to the target are skipped and
// fields missing from the stream keep their value.
//
// Struct tags:
//
//	Field int `io:"name"`    // wire name
//	Field int `io:"-"`       // not serialised
//	Field int `io:",final"`  // written, but never set on deserialisation
//
// Writers of types that map to datatype.Other emit their payload only, the
// ClassSerialiser wraps it in an OTHER field header so readers can skip it. All other
// writers emit a complete field (header and payload). Readers are always called with
// the buffer positioned at the payload.
package codec

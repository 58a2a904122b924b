// Package datatype defines the closed set of wire-level type tags used by the dIO
// binary serialisation format.
//
// Every DataType carries a stable byte code that is written into each field header.
// The codes are part of the wire format: they must never be reassigned between
// versions, otherwise streams written by older producers can no longer be parsed.
//
// Key Components:
//
//   - DataType: the tag itself, with its byte code, canonical name, primitive size,
//     category (scalar, array, object) and the Go types it maps to.
//
//   - Lookup functions: FromByte, FromClassType, FromTypeString and FromName perform a
//     linear search over the fixed variant set and return ErrUnsupportedType if nothing
//     matches. An unsupported type is always fatal for the current (de)serialise call.
//
//   - Enum: the interface a named integer type implements to be written as an ENUM.
//
// Usage:
//
//	dt, err := datatype.FromClassType(reflect.TypeOf([]float64{}))
//	// dt == datatype.DoubleArray
//	b := dt.AsByte() // 107
package datatype

// Package util provides small helpers shared by the dIO packages.
//
// The package contains:
//   - functions: the FNV-1a string hash used for field name hashes on the wire
package util

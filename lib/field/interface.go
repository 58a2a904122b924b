package field

import (
	"io"

	"github.com/ValentinKolb/dIO/lib/datatype"
	"github.com/ValentinKolb/dIO/lib/util"
)

// FieldDescription is a node of a field tree
type FieldDescription interface {
	// FieldNameHashCode returns the hash of the field name (see HashName)
	FieldNameHashCode() int32
	// FieldName returns the name of the field
	FieldName() string
	// DataType returns the wire type of the field
	DataType() datatype.DataType
	// DataDimensions returns the array extents, nil for non-array fields
	DataDimensions() []int
	// DataStartPosition returns the absolute buffer position of the payload, -1 if unknown
	DataStartPosition() int
	// DataStartOffset returns the payload offset relative to the header start, -1 if unknown
	DataStartOffset() int
	// DataSize returns the payload size in bytes, -1 if unknown
	DataSize() int
	// Parent returns the enclosing field or nil for the root
	Parent() FieldDescription
	// Children returns the nested fields in stream order
	Children() []FieldDescription
	// FindChildField returns the direct child with the given hash and name or nil
	FindChildField(hash int32, name string) FieldDescription
	// PrintFieldStructure writes a human-readable representation of the tree to w
	PrintFieldStructure(w io.Writer)
}

// HashName returns the wire hash of a field name (FNV-1a folded to 32 bits)
func HashName(name string) int32 {
	return util.FoldHash(util.HashString(name, 0))
}

// FindChild is the default FindChildField implementation shared by all trees
func FindChild(children []FieldDescription, hash int32, name string) FieldDescription {
	for _, child := range children {
		if child.FieldNameHashCode() == hash && child.FieldName() == name {
			return child
		}
	}
	return nil
}

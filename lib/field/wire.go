package field

import (
	"fmt"
	"io"
	"strings"

	"github.com/ValentinKolb/dIO/lib/datatype"
)

// WireDataFieldDescription describes one field record of a parsed wire stream
//
// - implements field.FieldDescription
type WireDataFieldDescription struct {
	parent          *WireDataFieldDescription
	children        []FieldDescription
	hash            int32
	name            string
	dataType        datatype.DataType
	dims            []int
	headerStart     int
	dataStartOffset int
	dataSize        int
}

// NewWireDataFieldDescription creates a node and appends it to the children of parent
// (if not nil). dataStartOffset and dataSize may be -1 if they are not known yet.
func NewWireDataFieldDescription(parent *WireDataFieldDescription, hash int32, name string, dataType datatype.DataType, headerStart, dataStartOffset, dataSize int) *WireDataFieldDescription {
	fd := &WireDataFieldDescription{
		parent:          parent,
		hash:            hash,
		name:            name,
		dataType:        dataType,
		headerStart:     headerStart,
		dataStartOffset: dataStartOffset,
		dataSize:        dataSize,
	}
	if parent != nil {
		parent.children = append(parent.children, fd)
	}
	return fd
}

// --------------------------------------------------------------------------
// Interface Methods (docu see field.FieldDescription)
// --------------------------------------------------------------------------

func (f *WireDataFieldDescription) FieldNameHashCode() int32 { return f.hash }

func (f *WireDataFieldDescription) FieldName() string { return f.name }

func (f *WireDataFieldDescription) DataType() datatype.DataType { return f.dataType }

func (f *WireDataFieldDescription) DataDimensions() []int { return f.dims }

func (f *WireDataFieldDescription) DataStartPosition() int {
	if f.dataStartOffset < 0 {
		return -1
	}
	return f.headerStart + f.dataStartOffset
}

func (f *WireDataFieldDescription) DataStartOffset() int { return f.dataStartOffset }

func (f *WireDataFieldDescription) DataSize() int { return f.dataSize }

func (f *WireDataFieldDescription) Parent() FieldDescription {
	if f.parent == nil {
		return nil
	}
	return f.parent
}

func (f *WireDataFieldDescription) Children() []FieldDescription { return f.children }

func (f *WireDataFieldDescription) FindChildField(hash int32, name string) FieldDescription {
	return FindChild(f.children, hash, name)
}

func (f *WireDataFieldDescription) PrintFieldStructure(w io.Writer) {
	Print(w, f)
}

// --------------------------------------------------------------------------
// Wire specific accessors
// --------------------------------------------------------------------------

// HeaderStart returns the absolute buffer position of the field header
func (f *WireDataFieldDescription) HeaderStart() int { return f.headerStart }

// DataEndPosition returns the first position after the payload, -1 if unknown
func (f *WireDataFieldDescription) DataEndPosition() int {
	if f.dataStartOffset < 0 || f.dataSize < 0 {
		return -1
	}
	return f.DataStartPosition() + f.dataSize
}

// SetDataStartOffset sets the payload offset relative to the header start
func (f *WireDataFieldDescription) SetDataStartOffset(offset int) { f.dataStartOffset = offset }

// SetDataSize sets the payload size in bytes
func (f *WireDataFieldDescription) SetDataSize(size int) { f.dataSize = size }

// SetDataDimensions sets the array extents
func (f *WireDataFieldDescription) SetDataDimensions(dims []int) { f.dims = dims }

// WireParent returns the parent as concrete type (nil for the root)
func (f *WireDataFieldDescription) WireParent() *WireDataFieldDescription { return f.parent }

// String implements fmt.Stringer
func (f *WireDataFieldDescription) String() string {
	return fmt.Sprintf("%s [%s, hash=%d, header=%d, data=%d, size=%d, dims=%v]",
		f.name, f.dataType.Name(), f.hash, f.headerStart, f.DataStartPosition(), f.dataSize, f.dims)
}

// --------------------------------------------------------------------------
// Tree printing
// --------------------------------------------------------------------------

// Print writes the tree rooted at fd to w, one field per line, indented by depth
func Print(w io.Writer, fd FieldDescription) {
	printLevel(w, fd, 0)
}

func printLevel(w io.Writer, fd FieldDescription, level int) {
	indent := strings.Repeat("  ", level)
	if s, ok := fd.(fmt.Stringer); ok {
		_, _ = fmt.Fprintf(w, "%s%s\n", indent, s.String())
	} else {
		_, _ = fmt.Fprintf(w, "%s%s [%s]\n", indent, fd.FieldName(), fd.DataType().Name())
	}
	for _, child := range fd.Children() {
		printLevel(w, child, level+1)
	}
}

// Attach appends f to the children of parent and sets its parent link
func (f *WireDataFieldDescription) Attach(parent *WireDataFieldDescription) {
	f.parent = parent
	if parent != nil {
		parent.children = append(parent.children, f)
	}
}

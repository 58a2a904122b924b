package inspect

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/ValentinKolb/dIO/lib/buffer"
	"github.com/ValentinKolb/dIO/lib/datatype"
	"github.com/ValentinKolb/dIO/lib/field"
	"github.com/ValentinKolb/dIO/lib/wire"
)

// maxElements is the number of array or collection elements printed per field
const maxElements = 8

// Inspect parses the stream in buf and writes the header info and the field tree to w
func Inspect(w io.Writer, buf buffer.IoBuffer) error {
	s := wire.NewBinarySerialiser(buf)

	start := buf.Position()
	info, err := s.CheckHeaderInfo()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "producer %s v%d.%d.%d, %d bytes\n", info.Producer, info.Major, info.Minor, info.Micro, buf.Limit()-start)

	if err := buf.SetPosition(start); err != nil {
		return err
	}
	root, err := s.ParseIoStream(true)
	if err != nil {
		return err
	}
	for _, child := range root.Children() {
		if err := printNode(w, s, child, 0); err != nil {
			return err
		}
	}
	return nil
}

func printNode(w io.Writer, s *wire.BinarySerialiser, fd field.FieldDescription, depth int) error {
	name := fd.FieldName()
	if name == "" {
		name = "<anonymous>"
	}
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s%s (%s) start=%d size=%d", indent, name, fd.DataType(), fd.DataStartPosition(), fd.DataSize())
	if dims := fd.DataDimensions(); len(dims) > 1 {
		fmt.Fprintf(w, " dims=%v", dims)
	}

	switch fd.DataType() {
	case datatype.StartMarker:
		fmt.Fprintln(w)
		for _, child := range fd.Children() {
			if err := printNode(w, s, child, depth+1); err != nil {
				return err
			}
		}
		return nil
	case datatype.Other:
		fmt.Fprintln(w, " <opaque>")
		return nil
	}

	value, err := wire.ReadValue(s, fd)
	if err != nil {
		return fmt.Errorf("field %s: %w", fd.FieldName(), err)
	}
	fmt.Fprintf(w, " = %s\n", formatValue(value))
	return nil
}

// formatValue prints slices and maps truncated to maxElements entries
func formatValue(value any) string {
	v := reflect.ValueOf(value)
	if !v.IsValid() {
		return "<nil>"
	}
	switch v.Kind() {
	case reflect.Slice:
		if v.Len() <= maxElements {
			return fmt.Sprintf("%v", value)
		}
		return fmt.Sprintf("%v ... (%d elements)", v.Slice(0, maxElements).Interface(), v.Len())
	case reflect.Map:
		if v.Len() <= maxElements {
			return fmt.Sprintf("%v", value)
		}
		return fmt.Sprintf("map with %d entries", v.Len())
	case reflect.String:
		return fmt.Sprintf("%q", value)
	default:
		return fmt.Sprintf("%v", value)
	}
}

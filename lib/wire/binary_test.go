package wire

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ValentinKolb/dIO/lib/buffer"
	"github.com/ValentinKolb/dIO/lib/datatype"
	"github.com/ValentinKolb/dIO/lib/field"
	"github.com/stretchr/testify/require"
)

type color int

func (c color) String() string       { return c.EnumValues()[c] }
func (c color) EnumValues() []string { return []string{"RED", "GREEN", "BLUE"} }

type level string

func (l level) EnumValues() []string { return []string{"low", "high"} }
func (l level) String() string       { return string(l) }

// roundTrip writes a stream with write, flips the buffer and returns a reading serialiser
func roundTrip(t *testing.T, write func(s *BinarySerialiser)) *BinarySerialiser {
	t.Helper()
	s := NewBinarySerialiser(buffer.NewByteBuffer(0))
	write(s)
	s.Buffer().Flip()
	return s
}

func writeRecord(s *BinarySerialiser) {
	s.PutHeaderInfo("record")
	s.PutFloat64("x", 3.5)
	s.PutString("label", "special point")
	_ = s.PutStringArray("tags", []string{"standard error"})
	s.PutEndMarker(RootEndName)
}

func TestHeaderInfo(t *testing.T) {
	s := roundTrip(t, writeRecord)

	info, err := s.CheckHeaderInfo()
	require.NoError(t, err)
	require.Equal(t, ProducerName, info.Producer)
	require.Equal(t, VersionMajor, info.Major)
	require.Equal(t, "record", info.Root.FieldName())
	require.Equal(t, datatype.StartMarker, info.Root.DataType())
}

func TestHeaderInfoMismatch(t *testing.T) {
	t.Run("Producer", func(t *testing.T) {
		s := roundTrip(t, func(s *BinarySerialiser) {
			s.Buffer().PutString("someone else")
			s.Buffer().PutByte(VersionMajor)
			s.Buffer().PutByte(0)
			s.Buffer().PutByte(0)
		})
		_, err := s.CheckHeaderInfo()
		require.ErrorIs(t, err, ErrHeaderMismatch)
	})

	t.Run("Major", func(t *testing.T) {
		s := roundTrip(t, func(s *BinarySerialiser) {
			s.Buffer().PutString(ProducerName)
			s.Buffer().PutByte(VersionMajor + 1)
			s.Buffer().PutByte(0)
			s.Buffer().PutByte(0)
		})
		_, err := s.CheckHeaderInfo()
		require.ErrorIs(t, err, ErrHeaderMismatch)
	})

	t.Run("Truncated", func(t *testing.T) {
		s := NewBinarySerialiser(buffer.WrapByteBuffer([]byte{0, 0}))
		_, err := s.CheckHeaderInfo()
		require.ErrorIs(t, err, ErrMalformedStream)
	})
}

func TestFieldHeaderBackPatch(t *testing.T) {
	s := NewBinarySerialiser(buffer.NewByteBuffer(0))
	fd := s.PutFieldHeader("value", datatype.Double)
	require.Equal(t, 0, fd.HeaderStart())
	require.Equal(t, -1, fd.DataSize())
	s.Buffer().PutFloat64(1.25)
	s.UpdateDataEndMarker(fd)
	require.Equal(t, 8, fd.DataSize())
	s.Buffer().Flip()

	read, err := s.GetFieldHeader()
	require.NoError(t, err)
	require.Equal(t, "value", read.FieldName())
	require.Equal(t, field.HashName("value"), read.FieldNameHashCode())
	require.Equal(t, fd.DataStartOffset(), read.DataStartOffset())
	require.Equal(t, 8, read.DataSize())
	require.Equal(t, read.DataStartPosition(), s.Buffer().Position())
	require.Equal(t, 1.25, s.GetFloat64())
}

func TestParseRecord(t *testing.T) {
	s := roundTrip(t, writeRecord)

	root, err := s.ParseIoStream(true)
	require.NoError(t, err)
	require.Equal(t, RootNodeName, root.FieldName())
	require.Len(t, root.Children(), 1)

	hint := root.Children()[0]
	require.Equal(t, "record", hint.FieldName())
	children := hint.Children()
	require.Len(t, children, 3)

	expected := []struct {
		name string
		dt   datatype.DataType
	}{
		{"x", datatype.Double},
		{"label", datatype.String},
		{"tags", datatype.StringArray},
	}
	for i, e := range expected {
		require.Equal(t, e.name, children[i].FieldName())
		require.Equal(t, e.dt, children[i].DataType())
	}
	require.Equal(t, []int{1}, children[2].DataDimensions())

	// the whole stream is consumed including the root end marker
	require.False(t, s.Buffer().HasRemaining())

	x, err := ReadValue(s, hint.FindChildField(field.HashName("x"), "x"))
	require.NoError(t, err)
	require.Equal(t, 3.5, x)
	label, err := ReadValue(s, children[1])
	require.NoError(t, err)
	require.Equal(t, "special point", label)
	tags, err := ReadValue(s, children[2])
	require.NoError(t, err)
	require.Equal(t, []string{"standard error"}, tags)
}

func TestNestedMarkers(t *testing.T) {
	s := roundTrip(t, func(s *BinarySerialiser) {
		s.PutHeaderInfo("outer")
		s.PutInt32("a", 1)
		s.PutStartMarker("inner")
		s.PutInt64("b", 2)
		s.PutStartMarker("deepest")
		s.PutBool("c", true)
		s.PutEndMarker("deepest")
		s.PutEndMarker("inner")
		s.PutInt16("d", 4)
		s.PutEndMarker(RootEndName)
	})

	root, err := s.ParseIoStream(true)
	require.NoError(t, err)
	outer := root.Children()[0]
	require.Len(t, outer.Children(), 3)

	inner := outer.Children()[1].(*field.WireDataFieldDescription)
	require.Equal(t, datatype.StartMarker, inner.DataType())
	require.Len(t, inner.Children(), 2)
	require.Equal(t, "deepest", inner.Children()[1].FieldName())
	require.Equal(t, "c", inner.Children()[1].Children()[0].FieldName())
	require.Equal(t, "d", outer.Children()[2].FieldName())

	// the start marker size covers the nested fields and its end marker
	d := outer.Children()[2].(*field.WireDataFieldDescription)
	require.Equal(t, d.HeaderStart(), inner.DataEndPosition())
}

func TestParseWithoutHeader(t *testing.T) {
	s := roundTrip(t, func(s *BinarySerialiser) {
		s.PutFloat32("f", 1.5)
		s.PutUint16("c", 'x')
	})
	root, err := s.ParseIoStream(false)
	require.NoError(t, err)
	require.Len(t, root.Children(), 2)
	require.Equal(t, datatype.Char, root.Children()[1].DataType())
}

func TestArrayDimensions(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7}
	s := roundTrip(t, func(s *BinarySerialiser) {
		require.NoError(t, s.PutFloat64Array("matrix", values, 2, 3))
		require.NoError(t, s.PutInt32Array("plain", []int32{9, 8}))
		require.Error(t, s.PutInt64Array("toolarge", []int64{1}, 2, 2))
	})

	root, err := s.ParseIoStream(false)
	require.NoError(t, err)
	require.Len(t, root.Children(), 2)

	matrix := root.Children()[0]
	require.Equal(t, []int{2, 3}, matrix.DataDimensions())
	v, err := ReadValue(s, matrix)
	require.NoError(t, err)
	require.Equal(t, values[:6], v)

	plain := root.Children()[1]
	require.Equal(t, []int{2}, plain.DataDimensions())
	require.NoError(t, s.Buffer().SetPosition(plain.DataStartPosition()))
	require.Equal(t, []int32{9, 8}, s.GetInt32Array(nil))
}

func TestContainers(t *testing.T) {
	list := []int{3, 1, 2}
	anyList := []any{"a", "b"}
	m := map[string]float64{"b": 2, "a": 1}
	set := map[int16]struct{}{7: {}, 3: {}}
	colors := []color{2, 0}

	s := roundTrip(t, func(s *BinarySerialiser) {
		require.NoError(t, s.PutCollection("list", reflect.ValueOf(list)))
		require.NoError(t, s.PutCollection("anyList", reflect.ValueOf(anyList)))
		require.NoError(t, s.PutMap("map", reflect.ValueOf(m)))
		require.NoError(t, s.PutSet("set", reflect.ValueOf(set)))
		require.NoError(t, s.PutCollection("colors", reflect.ValueOf(colors)))
		s.PutEnum("color", color(1))
		s.PutEnum("level", level("high"))
	})

	root, err := s.ParseIoStream(false)
	require.NoError(t, err)
	children := root.Children()
	require.Len(t, children, 7)
	require.Equal(t, datatype.List, children[0].DataType())
	require.Equal(t, datatype.Map, children[2].DataType())
	require.Equal(t, datatype.Set, children[3].DataType())
	require.Equal(t, datatype.Enum, children[5].DataType())

	read := func(i int, dst any) {
		t.Helper()
		require.NoError(t, s.Buffer().SetPosition(children[i].DataStartPosition()))
		v := reflect.ValueOf(dst).Elem()
		var err error
		switch children[i].DataType() {
		case datatype.List:
			err = s.GetCollection(v)
		case datatype.Map:
			err = s.GetMap(v)
		case datatype.Set:
			err = s.GetSet(v)
		case datatype.Enum:
			err = s.GetEnum(v)
		}
		require.NoError(t, err)
	}

	var gotList []int
	read(0, &gotList)
	require.Equal(t, list, gotList)

	var gotAny []any
	read(1, &gotAny)
	require.Equal(t, anyList, gotAny)

	var gotMap map[string]float64
	read(2, &gotMap)
	require.Equal(t, m, gotMap)

	var gotSet map[int16]struct{}
	read(3, &gotSet)
	require.Equal(t, set, gotSet)

	var gotColors []color
	read(4, &gotColors)
	require.Equal(t, colors, gotColors)

	var gotColor color
	read(5, &gotColor)
	require.Equal(t, color(1), gotColor)

	var gotLevel level
	read(6, &gotLevel)
	require.Equal(t, level("high"), gotLevel)

	// generic decoding
	v, err := ReadValue(s, children[3])
	require.NoError(t, err)
	require.Equal(t, []any{int16(3), int16(7)}, v)
	v, err = ReadValue(s, children[5])
	require.NoError(t, err)
	require.Equal(t, EnumInfo{Type: "wire.color", Name: "GREEN", Ordinal: 1}, v)
}

func TestContainerErrors(t *testing.T) {
	s := NewBinarySerialiser(buffer.NewByteBuffer(0))
	require.ErrorIs(t, s.PutCollection("structs", reflect.ValueOf([]struct{ A int }{{1}})), datatype.ErrUnsupportedType)
	require.ErrorIs(t, s.PutMap("notamap", reflect.ValueOf(1)), datatype.ErrUnsupportedType)

	s = roundTrip(t, func(s *BinarySerialiser) {
		require.NoError(t, s.PutCollection("strings", reflect.ValueOf([]string{"x"})))
	})
	fd, err := s.GetFieldHeader()
	require.NoError(t, err)
	require.Equal(t, "strings", fd.FieldName())
	var ints []int
	require.ErrorIs(t, s.GetCollection(reflect.ValueOf(&ints).Elem()), datatype.ErrUnsupportedType)
}

func TestMixedContainerElements(t *testing.T) {
	s := NewBinarySerialiser(buffer.NewByteBuffer(0))
	s.PutInt32("before", 1)
	pos := s.Buffer().Position()

	for name, write := range map[string]func() error{
		"string then int": func() error { return s.PutCollection("l", reflect.ValueOf([]any{"x", 1})) },
		"int then string": func() error { return s.PutCollection("l", reflect.ValueOf([]any{1, "x"})) },
		"float then bool": func() error { return s.PutCollection("l", reflect.ValueOf([]any{1.5, true})) },
		"map values":      func() error { return s.PutMap("m", reflect.ValueOf(map[string]any{"a": 1, "b": "x"})) },
		"set keys":        func() error { return s.PutSet("s", reflect.ValueOf(map[any]struct{}{"a": {}, 2: {}})) },
		"enum then int":   func() error { return s.PutCollection("l", reflect.ValueOf([]any{color(1), 2})) },
	} {
		require.NotPanics(t, func() {
			require.ErrorIs(t, write(), datatype.ErrUnsupportedType, name)
		}, name)
		// the partially written field is dropped
		require.Equal(t, pos, s.Buffer().Position(), name)
	}

	s.PutInt32("after", 2)
	s.Buffer().Flip()
	root, err := s.ParseIoStream(false)
	require.NoError(t, err)
	require.Len(t, root.Children(), 2)
	require.Equal(t, "before", root.Children()[0].FieldName())
	require.Equal(t, "after", root.Children()[1].FieldName())
}

func TestUnknownEnumValue(t *testing.T) {
	s := roundTrip(t, func(s *BinarySerialiser) {
		fd := s.PutFieldHeader("color", datatype.Enum)
		s.Buffer().PutString("wire.color")
		s.Buffer().PutString("PURPLE")
		s.Buffer().PutInt32(7)
		s.UpdateDataEndMarker(fd)
	})
	_, err := s.GetFieldHeader()
	require.NoError(t, err)
	var c color
	require.ErrorIs(t, s.GetEnum(reflect.ValueOf(&c).Elem()), ErrUnknownEnumValue)
}

func TestMalformedStream(t *testing.T) {
	s := roundTrip(t, writeRecord)
	full := s.Buffer().Bytes()

	for _, cut := range []int{len(full) / 2, len(full) - 3} {
		s := NewBinarySerialiser(buffer.WrapByteBuffer(full[:cut]))
		_, err := s.ParseIoStream(true)
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrMalformedStream), "cut at %d: %v", cut, err)
	}
}

package codec

import (
	"bytes"
	"reflect"
	"testing"
	"time"

	"github.com/ValentinKolb/dIO/lib/buffer"
	"github.com/ValentinKolb/dIO/lib/datatype"
	"github.com/ValentinKolb/dIO/lib/wire"
	"github.com/stretchr/testify/require"
)

type record struct {
	X     float64  `io:"x"`
	Label string   `io:"label"`
	Tags  []string `io:"tags"`
}

type level string

func (l level) EnumValues() []string { return []string{"low", "high"} }
func (l level) String() string       { return string(l) }

type inner struct {
	A int32
	B []float64
}

type everything struct {
	base
	Bool    bool
	Byte    uint8
	Int8    int8
	Short   int16
	Char    uint16
	Int32   int32
	Uint32  uint32
	Long    int64
	Int     int
	Uint64  uint64
	Float   float32
	Double  float64
	String  string
	Meters  meters
	Bools   []bool
	Bytes   []byte
	Shorts  []int16
	Ints    []int32
	Longs   []int64
	Plain   []int
	Floats  []float32
	Doubles []float64
	Strings []string
	Samples samples
	Fixed   [3]int16
	Color   color
	Colors  []color
	Level   level
	List    []any
	Words   map[string]int
	Set     map[string]struct{}
	When    time.Time
	Timeout time.Duration
	Inner   inner
	Pointer *inner
	Nil     *inner
	Ptr     *float64
	Ignored int `io:"-"`
}

func newEverything() everything {
	f := 2.75
	return everything{
		base:    base{ID: 99},
		Bool:    true,
		Byte:    0xFE,
		Int8:    -5,
		Short:   -1234,
		Char:    'ä',
		Int32:   -123456,
		Uint32:  4_000_000_000,
		Long:    -1 << 40,
		Int:     42,
		Uint64:  1<<64 - 1,
		Float:   1.5,
		Double:  3.25,
		String:  "hello wörld",
		Meters:  12.5,
		Bools:   []bool{true, false, true},
		Bytes:   []byte{1, 2, 3},
		Shorts:  []int16{-1, 2},
		Ints:    []int32{1, -2, 3},
		Longs:   []int64{1 << 50},
		Plain:   []int{4, 5, 6},
		Floats:  []float32{0.5},
		Doubles: []float64{1, 2, 3},
		Strings: []string{"a", "", "c"},
		Samples: samples{9, 8},
		Fixed:   [3]int16{7, 8, 9},
		Color:   2,
		Colors:  []color{1, 0},
		Level:   "high",
		List:    []any{"x", "y"},
		Words:   map[string]int{"one": 1, "two": 2},
		Set:     map[string]struct{}{"a": {}, "b": {}},
		When:    time.Date(2024, 5, 17, 13, 14, 15, 16, time.UTC),
		Timeout: 3 * time.Second,
		Inner:   inner{A: 1, B: []float64{0.5}},
		Pointer: &inner{A: 2},
		Ptr:     &f,
		Ignored: 17,
	}
}

func roundTrip(t *testing.T, in any, out any) {
	t.Helper()
	data, err := NewClassSerialiser(buffer.NewByteBuffer(0)).Serialise(in)
	require.NoError(t, err)

	cs := NewClassSerialiser(buffer.WrapByteBuffer(data))
	result, err := cs.DeserialiseObject(out)
	require.NoError(t, err)
	require.True(t, result == out)
	require.Equal(t, len(data), cs.Buffer().Position())
}

func TestRecordScenario(t *testing.T) {
	in := record{X: 3.5, Label: "special point", Tags: []string{"standard error"}}
	data, err := NewClassSerialiser(buffer.NewByteBuffer(0)).Serialise(&in)
	require.NoError(t, err)

	// header info first
	io := wire.NewBinarySerialiser(buffer.WrapByteBuffer(data))
	info, err := io.CheckHeaderInfo()
	require.NoError(t, err)
	require.Equal(t, wire.ProducerName, info.Producer)
	require.Equal(t, "record", info.Root.FieldName())

	// three typed fields
	require.NoError(t, io.Buffer().SetPosition(0))
	root, err := io.ParseIoStream(true)
	require.NoError(t, err)
	fields := root.Children()[0].Children()
	require.Len(t, fields, 3)
	require.Equal(t, datatype.Double, fields[0].DataType())
	require.Equal(t, datatype.String, fields[1].DataType())
	require.Equal(t, datatype.StringArray, fields[2].DataType())

	// root end marker last
	require.True(t, bytes.HasSuffix(data, []byte(wire.RootEndName)))
	require.Equal(t, len(data), io.Buffer().Position())

	var out record
	roundTrip(t, &in, &out)
	require.Equal(t, in, out)
}

func TestRoundTripAllTypes(t *testing.T) {
	for _, factory := range []func(capacity int) buffer.IoBuffer{
		func(c int) buffer.IoBuffer { return buffer.NewByteBuffer(c) },
		func(c int) buffer.IoBuffer { return buffer.NewFastByteBuffer(c) },
	} {
		in := newEverything()
		cs := NewClassSerialiser(factory(0))
		require.NoError(t, cs.SerialiseObject(in))
		cs.Buffer().Flip()

		var out everything
		_, err := cs.DeserialiseObject(&out)
		require.NoError(t, err)

		expected := in
		expected.Ignored = 0
		require.Equal(t, expected, out)
		require.Nil(t, out.Nil)
	}
}

func TestBufferReuse(t *testing.T) {
	cs := NewClassSerialiser(buffer.NewFastByteBuffer(0))
	for i := 0; i < 3; i++ {
		in := record{X: float64(i), Label: "run", Tags: []string{"t"}}
		cs.Buffer().Reset()
		require.NoError(t, cs.SerialiseObject(&in))
		cs.Buffer().Flip()

		out := record{Tags: make([]string, 0, 4)}
		_, err := cs.DeserialiseObject(&out)
		require.NoError(t, err)
		require.Equal(t, in, out)
	}
}

type recordV2 struct {
	X      float64  `io:"x"`
	Label  string   `io:"label"`
	Tags   []string `io:"tags"`
	Extra  string
	Nested inner
}

func TestUnknownFieldTolerance(t *testing.T) {
	v2 := recordV2{X: 1.5, Label: "new", Extra: "ignored", Nested: inner{A: 3}}
	var v1 record
	roundTrip(t, &v2, &v1)
	require.Equal(t, record{X: 1.5, Label: "new"}, v1)

	// fields missing in the stream keep their value
	back := recordV2{Extra: "kept", Nested: inner{A: 9}}
	roundTrip(t, &v1, &back)
	require.Equal(t, recordV2{X: 1.5, Label: "new", Extra: "kept", Nested: inner{A: 9}}, back)
}

func TestTypeMismatchIsSkipped(t *testing.T) {
	type asString struct{ X string }
	type asDouble struct{ X float64 }
	out := asDouble{X: 8}
	roundTrip(t, &asString{X: "text"}, &out)
	require.Equal(t, 8.0, out.X)
}

type withFinal struct {
	ID   int64 `io:",final"`
	Name string
}

func TestFinalFieldSafety(t *testing.T) {
	out := withFinal{ID: 42}
	roundTrip(t, &withFinal{ID: 1, Name: "a"}, &out)
	require.Equal(t, withFinal{ID: 42, Name: "a"}, out)
}

func TestNilObject(t *testing.T) {
	cs := NewClassSerialiser(buffer.NewByteBuffer(0))
	data, err := cs.Serialise(nil)
	require.NoError(t, err)

	root, err := wire.NewBinarySerialiser(buffer.WrapByteBuffer(data)).ParseIoStream(true)
	require.NoError(t, err)
	require.Len(t, root.Children(), 1)
	require.Empty(t, root.Children()[0].Children())

	out := record{X: 1}
	roundTrip(t, nil, &out)
	require.Equal(t, record{X: 1}, out)

	roundTrip(t, (*record)(nil), &out)
	require.Equal(t, record{X: 1}, out)
}

func TestInvalidTarget(t *testing.T) {
	data, err := NewClassSerialiser(buffer.NewByteBuffer(0)).Serialise(record{})
	require.NoError(t, err)
	cs := NewClassSerialiser(buffer.WrapByteBuffer(data))

	_, err = cs.DeserialiseObject(record{})
	require.ErrorIs(t, err, ErrInvalidTarget)
	_, err = cs.DeserialiseObject((*record)(nil))
	require.ErrorIs(t, err, ErrInvalidTarget)
	_, err = cs.DeserialiseObject(nil)
	require.ErrorIs(t, err, ErrInvalidTarget)
}

func TestUnsupportedRoot(t *testing.T) {
	_, err := NewClassSerialiser(buffer.NewByteBuffer(0)).Serialise(make(chan int))
	require.ErrorIs(t, err, datatype.ErrUnsupportedType)
}

func TestMixedListIsRejected(t *testing.T) {
	type mixed struct {
		L []any
	}
	cs := NewClassSerialiser(buffer.NewByteBuffer(0))
	for _, l := range [][]any{{"x", 1}, {1, "x"}} {
		_, err := cs.Serialise(mixed{L: l})
		require.ErrorIs(t, err, datatype.ErrUnsupportedType, "%v", l)
	}
}

func TestClassLevelSerialiser(t *testing.T) {
	t.Run("Array", func(t *testing.T) {
		var out []float64
		roundTrip(t, []float64{1, 2, 3}, &out)
		require.Equal(t, []float64{1, 2, 3}, out)
	})

	t.Run("Enum", func(t *testing.T) {
		var out color
		roundTrip(t, color(1), &out)
		require.Equal(t, color(1), out)
	})

	t.Run("NamedScalar", func(t *testing.T) {
		var out meters
		roundTrip(t, meters(4.5), &out)
		require.Equal(t, meters(4.5), out)
	})

	t.Run("OtherPayload", func(t *testing.T) {
		when := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
		var out time.Time
		roundTrip(t, when, &out)
		require.True(t, when.Equal(out))
	})
}

type point struct {
	X, Y float64
}

type shape struct {
	Name   string
	Origin point
	Corner *point
}

// pointSerialiser writes points as a compact OTHER payload
func pointSerialiser() FieldSerialiser {
	return NewValueSerialiser(
		func(io wire.IoSerialiser, dst reflect.Value) error {
			dst.Set(reflect.ValueOf(point{X: io.GetFloat64(), Y: io.GetFloat64()}))
			return io.Buffer().Err()
		},
		func(io wire.IoSerialiser, _ string, v reflect.Value) error {
			p := v.Interface().(point)
			io.Buffer().PutFloat64(p.X)
			io.Buffer().PutFloat64(p.Y)
			return nil
		},
		typeOf[point]())
}

func TestCustomOtherSerialiser(t *testing.T) {
	r := NewDefaultRegistry()
	require.NoError(t, r.AddClassDefinition(pointSerialiser()))

	in := shape{Name: "box", Origin: point{1, 2}, Corner: &point{3, 4}}
	cs := NewClassSerialiser(buffer.NewByteBuffer(0))
	cs.UseRegistry(r)
	data, err := cs.Serialise(&in)
	require.NoError(t, err)

	root, err := wire.NewBinarySerialiser(buffer.WrapByteBuffer(data)).ParseIoStream(true)
	require.NoError(t, err)
	fields := root.Children()[0].Children()
	require.Len(t, fields, 3)
	require.Equal(t, datatype.Other, fields[1].DataType())
	require.Equal(t, 16, fields[1].DataSize())

	reader := NewClassSerialiser(buffer.WrapByteBuffer(data))
	reader.UseRegistry(r)
	var out shape
	_, err = reader.DeserialiseObject(&out)
	require.NoError(t, err)
	require.Equal(t, in, out)

	// without the custom serialiser points are framed structs, still readable
	var plain shape
	roundTrip(t, &in, &plain)
	require.Equal(t, in, plain)
}

func TestAnonymousFraming(t *testing.T) {
	io := wire.NewBinarySerialiser(buffer.NewByteBuffer(0))
	io.PutHeaderInfo("")
	io.PutStartMarker("")
	io.PutFloat64("x", 7.5)
	io.PutString("label", "framed")
	io.PutEndMarker("")
	io.PutEndMarker(wire.RootEndName)
	io.Buffer().Flip()

	cs := NewClassSerialiser(io.Buffer())
	var out record
	_, err := cs.DeserialiseObject(&out)
	require.NoError(t, err)
	require.Equal(t, record{X: 7.5, Label: "framed"}, out)
}

func TestMalformedInput(t *testing.T) {
	data, err := NewClassSerialiser(buffer.NewByteBuffer(0)).Serialise(&record{X: 1, Label: "a"})
	require.NoError(t, err)

	cs := NewClassSerialiser(buffer.WrapByteBuffer(data[:len(data)-5]))
	_, err = cs.DeserialiseObject(&record{})
	require.ErrorIs(t, err, wire.ErrMalformedStream)

	cs = NewClassSerialiser(buffer.WrapByteBuffer([]byte("not a stream at all")))
	_, err = cs.DeserialiseObject(&record{})
	require.Error(t, err)
}

package datatype

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

type color int

func (c color) String() string       { return c.EnumValues()[c] }
func (c color) EnumValues() []string { return []string{"RED", "GREEN", "BLUE"} }

type meters float64

// TestByteCodesAreUnique checks that no two variants share a wire code
func TestByteCodesAreUnique(t *testing.T) {
	seen := make(map[byte]DataType)
	for _, dt := range Values() {
		other, ok := seen[dt.AsByte()]
		require.False(t, ok, "byte code %d used by %s and %s", dt.AsByte(), dt, other)
		seen[dt.AsByte()] = dt
	}
}

// TestFixedByteCodes pins the wire codes, changing any of them breaks old streams
func TestFixedByteCodes(t *testing.T) {
	expected := map[DataType]byte{
		StartMarker: 0, Bool: 1, Byte: 2, Short: 3, Int: 4, Long: 5, Float: 6, Double: 7, Char: 8, String: 9,
		BoolArray: 101, DoubleArray: 107, StringArray: 109,
		Collection: 200, Enum: 201, List: 202, Map: 203, Queue: 204, Set: 205,
		Other: 0xFD, EndMarker: 0xFE,
	}
	for dt, code := range expected {
		require.Equal(t, code, dt.AsByte(), dt.Name())
	}
}

// TestFromByteBijection tests fromByte(v.asByte()) == v for every variant
func TestFromByteBijection(t *testing.T) {
	for _, dt := range Values() {
		got, err := FromByte(dt.AsByte())
		require.NoError(t, err)
		require.Equal(t, dt, got)
	}
}

// TestFromClassTypeBijection tests fromClassType(v.classType()) == v where a class type is defined
func TestFromClassTypeBijection(t *testing.T) {
	for _, dt := range Values() {
		ct := dt.ClassType()
		if ct == nil {
			continue
		}
		got, err := FromClassType(ct)
		require.NoError(t, err, dt.Name())
		require.Equal(t, dt, got, dt.Name())
	}
}

func TestFromNameAndTypeString(t *testing.T) {
	for _, dt := range Values() {
		got, err := FromName(dt.Name())
		require.NoError(t, err)
		require.Equal(t, dt, got)
	}

	dt, err := FromTypeString("[]float64")
	require.NoError(t, err)
	require.Equal(t, DoubleArray, dt)

	dt, err = FromTypeString("uint16")
	require.NoError(t, err)
	require.Equal(t, Char, dt)
}

func TestUnsupportedTypes(t *testing.T) {
	_, err := FromByte(42)
	require.True(t, errors.Is(err, ErrUnsupportedType))
	require.Contains(t, err.Error(), "42")

	_, err = FromName("complex")
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = FromTypeString("complex128")
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = FromClassType(reflect.TypeOf(struct{ X int }{}))
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = FromClassType(nil)
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestFromClassTypeKindFallbacks(t *testing.T) {
	cases := []struct {
		value    any
		expected DataType
	}{
		{meters(1), Double},
		{color(0), Enum},
		{[]meters{}, DoubleArray},
		{[]struct{}{}, List},
		{[]color{}, List},
		{map[string]int{}, Map},
		{map[string]struct{}{}, Set},
		{[]int8{}, ByteArray},
		{uint(1), Long},
	}
	for _, c := range cases {
		dt, err := FromClassType(reflect.TypeOf(c.value))
		require.NoError(t, err)
		require.Equal(t, c.expected, dt, "%T", c.value)
	}
}

func TestCategories(t *testing.T) {
	require.True(t, Double.IsScalar())
	require.True(t, StartMarker.IsScalar())
	require.True(t, DoubleArray.IsArray())
	require.True(t, Map.IsObject())
	require.True(t, Other.IsObject())
	require.False(t, String.IsArray())

	arr, err := Float.ArrayOf()
	require.NoError(t, err)
	require.Equal(t, FloatArray, arr)

	elem, err := StringArray.ElementOf()
	require.NoError(t, err)
	require.Equal(t, String, elem)

	_, err = Map.ArrayOf()
	require.ErrorIs(t, err, ErrUnsupportedType)
	require.Equal(t, 8, Double.PrimitiveSize())
}

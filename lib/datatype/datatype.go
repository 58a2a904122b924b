package datatype

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrUnsupportedType is returned if a byte code, Go type or type string does not map
// to any DataType
var ErrUnsupportedType = errors.New("unsupported data type")

// --------------------------------------------------------------------------
// Categories
// --------------------------------------------------------------------------

// Category groups the DataTypes for dispatching
type Category uint8

const (
	CategoryScalar Category = iota // single values and the start/end markers
	CategoryArray                  // primitive and string arrays
	CategoryObject                 // collections, maps, enums and custom objects
)

// --------------------------------------------------------------------------
// DataType
// --------------------------------------------------------------------------

// DataType is a wire-level type tag. The numeric value is the byte code written
// into the field header.
type DataType uint8

// The byte codes below are part of the wire format and must never be changed.
const (
	StartMarker DataType = 0
	Bool        DataType = 1
	Byte        DataType = 2
	Short       DataType = 3
	Int         DataType = 4
	Long        DataType = 5
	Float       DataType = 6
	Double      DataType = 7
	Char        DataType = 8
	String      DataType = 9

	BoolArray   DataType = 101
	ByteArray   DataType = 102
	ShortArray  DataType = 103
	IntArray    DataType = 104
	LongArray   DataType = 105
	FloatArray  DataType = 106
	DoubleArray DataType = 107
	CharArray   DataType = 108
	StringArray DataType = 109

	Collection DataType = 200
	Enum       DataType = 201
	List       DataType = 202
	Map        DataType = 203
	Queue      DataType = 204
	Set        DataType = 205

	Other     DataType = 0xFD
	EndMarker DataType = 0xFE
)

// EnumValue is implemented by named integer types that should be written as ENUM.
// EnumValues returns all value names, the index of a name is its ordinal.
type EnumValue interface {
	String() string
	EnumValues() []string
}

// EnumType is the reflect.Type of the EnumValue interface
var EnumType = reflect.TypeOf((*EnumValue)(nil)).Elem()

// variant holds the static description of a DataType
type variant struct {
	dataType   DataType
	name       string
	size       int
	category   Category
	classTypes []reflect.Type
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// variants is the fixed, ordered set of all DataTypes. The first class type of a
// variant is its primary Go type.
var variants = []variant{
	{StartMarker, "bos", 0, CategoryScalar, nil},
	{Bool, "bool", 1, CategoryScalar, []reflect.Type{typeOf[bool]()}},
	{Byte, "byte", 1, CategoryScalar, []reflect.Type{typeOf[uint8](), typeOf[int8]()}},
	{Short, "short", 2, CategoryScalar, []reflect.Type{typeOf[int16]()}},
	{Int, "int", 4, CategoryScalar, []reflect.Type{typeOf[int32](), typeOf[uint32]()}},
	{Long, "long", 8, CategoryScalar, []reflect.Type{typeOf[int64](), typeOf[int](), typeOf[uint64](), typeOf[uint]()}},
	{Float, "float", 4, CategoryScalar, []reflect.Type{typeOf[float32]()}},
	{Double, "double", 8, CategoryScalar, []reflect.Type{typeOf[float64]()}},
	{Char, "char", 2, CategoryScalar, []reflect.Type{typeOf[uint16]()}},
	{String, "string", 1, CategoryScalar, []reflect.Type{typeOf[string]()}},

	{BoolArray, "bool[]", 1, CategoryArray, []reflect.Type{typeOf[[]bool]()}},
	{ByteArray, "byte[]", 1, CategoryArray, []reflect.Type{typeOf[[]uint8](), typeOf[[]int8]()}},
	{ShortArray, "short[]", 2, CategoryArray, []reflect.Type{typeOf[[]int16]()}},
	{IntArray, "int[]", 4, CategoryArray, []reflect.Type{typeOf[[]int32](), typeOf[[]uint32]()}},
	{LongArray, "long[]", 8, CategoryArray, []reflect.Type{typeOf[[]int64](), typeOf[[]int](), typeOf[[]uint64](), typeOf[[]uint]()}},
	{FloatArray, "float[]", 4, CategoryArray, []reflect.Type{typeOf[[]float32]()}},
	{DoubleArray, "double[]", 8, CategoryArray, []reflect.Type{typeOf[[]float64]()}},
	{CharArray, "char[]", 2, CategoryArray, []reflect.Type{typeOf[[]uint16]()}},
	{StringArray, "string[]", 1, CategoryArray, []reflect.Type{typeOf[[]string]()}},

	{Collection, "collection", 1, CategoryObject, nil},
	{Enum, "enum", 4, CategoryObject, []reflect.Type{EnumType}},
	{List, "list", 1, CategoryObject, []reflect.Type{typeOf[[]any]()}},
	{Map, "map", 1, CategoryObject, []reflect.Type{typeOf[map[any]any]()}},
	{Queue, "queue", 1, CategoryObject, nil},
	{Set, "set", 1, CategoryObject, []reflect.Type{typeOf[map[any]struct{}]()}},
	{Other, "other", 1, CategoryObject, []reflect.Type{typeOf[any]()}},
	{EndMarker, "eos", 0, CategoryScalar, nil},
}

// lookup returns the variant of a DataType. Unknown values yield nil.
func (d DataType) lookup() *variant {
	for i := range variants {
		if variants[i].dataType == d {
			return &variants[i]
		}
	}
	return nil
}

// Values returns all DataTypes in wire-code order
func Values() []DataType {
	values := make([]DataType, len(variants))
	for i, v := range variants {
		values[i] = v.dataType
	}
	return values
}

// AsByte returns the byte code of the DataType
func (d DataType) AsByte() byte {
	return byte(d)
}

// Name returns the canonical name (e.g. "double[]")
func (d DataType) Name() string {
	if v := d.lookup(); v != nil {
		return v.name
	}
	return fmt.Sprintf("unknown(%d)", uint8(d))
}

// String implements fmt.Stringer
func (d DataType) String() string {
	return d.Name()
}

// PrimitiveSize returns the byte size of a single element, 0 for markers
func (d DataType) PrimitiveSize() int {
	if v := d.lookup(); v != nil {
		return v.size
	}
	return 0
}

// Category returns the category of the DataType
func (d DataType) Category() Category {
	if v := d.lookup(); v != nil {
		return v.category
	}
	return CategoryObject
}

// ClassTypes returns the Go types mapped to this DataType, primary type first
func (d DataType) ClassTypes() []reflect.Type {
	if v := d.lookup(); v != nil {
		return v.classTypes
	}
	return nil
}

// ClassType returns the primary Go type or nil if there is none
func (d DataType) ClassType() reflect.Type {
	if types := d.ClassTypes(); len(types) > 0 {
		return types[0]
	}
	return nil
}

// IsScalar reports whether the DataType is a single value (or a marker)
func (d DataType) IsScalar() bool {
	return d.Category() == CategoryScalar
}

// IsArray reports whether the DataType is a primitive or string array
func (d DataType) IsArray() bool {
	return d.Category() == CategoryArray
}

// IsObject reports whether the DataType is a collection, map, enum or custom object
func (d DataType) IsObject() bool {
	return d.Category() == CategoryObject
}

// ArrayOf returns the array DataType for a scalar primitive (e.g. Double -> DoubleArray)
func (d DataType) ArrayOf() (DataType, error) {
	if d >= Bool && d <= String {
		return d + 100, nil
	}
	return 0, fmt.Errorf("%w: no array type for %s", ErrUnsupportedType, d.Name())
}

// ElementOf returns the scalar DataType of an array type (e.g. DoubleArray -> Double)
func (d DataType) ElementOf() (DataType, error) {
	if d >= BoolArray && d <= StringArray {
		return d - 100, nil
	}
	return 0, fmt.Errorf("%w: %s is not an array type", ErrUnsupportedType, d.Name())
}

// --------------------------------------------------------------------------
// Lookup Functions
// --------------------------------------------------------------------------

// FromByte returns the DataType for a wire byte code
func FromByte(b byte) (DataType, error) {
	for _, v := range variants {
		if v.dataType.AsByte() == b {
			return v.dataType, nil
		}
	}
	return 0, fmt.Errorf("%w: byte code %d", ErrUnsupportedType, b)
}

// FromName returns the DataType for its canonical name
func FromName(name string) (DataType, error) {
	for _, v := range variants {
		if v.name == name {
			return v.dataType, nil
		}
	}
	return 0, fmt.Errorf("%w: name '%s'", ErrUnsupportedType, name)
}

// FromTypeString returns the DataType for a Go type string as printed by
// reflect.Type.String (e.g. "float64", "[]string")
func FromTypeString(s string) (DataType, error) {
	for _, v := range variants {
		for _, t := range v.classTypes {
			if t.String() == s {
				return v.dataType, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: type string '%s'", ErrUnsupportedType, s)
}

// kindTypes maps basic kinds to their scalar DataType, used for named types
// such as "type Meters float64"
var kindTypes = map[reflect.Kind]DataType{
	reflect.Bool:    Bool,
	reflect.Uint8:   Byte,
	reflect.Int8:    Byte,
	reflect.Int16:   Short,
	reflect.Uint16:  Char,
	reflect.Int32:   Int,
	reflect.Uint32:  Int,
	reflect.Int64:   Long,
	reflect.Int:     Long,
	reflect.Uint64:  Long,
	reflect.Uint:    Long,
	reflect.Float32: Float,
	reflect.Float64: Double,
	reflect.String:  String,
}

// FromClassType returns the DataType for a Go type. Exact class type matches win,
// then enum implementors, then kind based matches (named basic types, slices of
// basic types, generic slices and maps).
func FromClassType(t reflect.Type) (DataType, error) {
	if t == nil {
		return 0, fmt.Errorf("%w: class type <nil>", ErrUnsupportedType)
	}
	for _, v := range variants {
		for _, ct := range v.classTypes {
			if ct == t {
				return v.dataType, nil
			}
		}
	}

	if t.Kind() != reflect.Interface && t.Implements(EnumType) {
		return Enum, nil
	}

	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		// enum elements keep their names, they are written as LIST
		if elem, ok := kindTypes[t.Elem().Kind()]; ok && !t.Elem().Implements(EnumType) {
			return elem.ArrayOf()
		}
		return List, nil
	case reflect.Map:
		if t.Elem().Kind() == reflect.Struct && t.Elem().NumField() == 0 {
			return Set, nil
		}
		return Map, nil
	default:
		if dt, ok := kindTypes[t.Kind()]; ok {
			return dt, nil
		}
	}
	return 0, fmt.Errorf("%w: class type %v", ErrUnsupportedType, t)
}

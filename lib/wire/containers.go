package wire

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"

	"github.com/ValentinKolb/dIO/lib/datatype"
	"github.com/ValentinKolb/dIO/lib/field"
)

// Container payloads:
//
//	LIST := byte elemType, int32 n, n * element
//	SET  := byte elemType, int32 n, n * element
//	MAP  := byte keyType, byte valueType, int32 n, n * (key, value)
//	ENUM := string typeName, string valueName, int32 ordinal
//
// Elements are written without field headers. Allowed element types are the scalar
// DataTypes and ENUM (written as the value name). Interface typed containers take the
// element type from their first element, all elements must share it.

// --------------------------------------------------------------------------
// Element helpers
// --------------------------------------------------------------------------

// elementType resolves the DataType used for the elements of a container of type t
func elementType(t reflect.Type, sample reflect.Value) (datatype.DataType, error) {
	if t.Kind() == reflect.Interface {
		if !sample.IsValid() || sample.IsNil() {
			// empty container, the type byte is never used
			return datatype.Other, nil
		}
		t = sample.Elem().Type()
	}
	dt, err := datatype.FromClassType(t)
	if err != nil {
		return 0, err
	}
	if dt == datatype.Enum || (dt.IsScalar() && dt != datatype.StartMarker && dt != datatype.EndMarker) {
		return dt, nil
	}
	return 0, fmt.Errorf("%w: %v cannot be a container element", datatype.ErrUnsupportedType, t)
}

func intOf(v reflect.Value) int64 {
	if v.CanInt() {
		return v.Int()
	}
	return int64(v.Uint())
}

// putElement writes a single element without header
func (s *BinarySerialiser) putElement(dt datatype.DataType, v reflect.Value) error {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return fmt.Errorf("%w: nil container element", datatype.ErrUnsupportedType)
		}
		v = v.Elem()
		// interface typed containers are not homogeneous by construction
		if got, err := datatype.FromClassType(v.Type()); err != nil || got != dt {
			return fmt.Errorf("%w: element of type %v in a %s container", datatype.ErrUnsupportedType, v.Type(), dt)
		}
	}
	switch dt {
	case datatype.Bool:
		s.buf.PutBool(v.Bool())
	case datatype.Byte:
		s.buf.PutByte(byte(intOf(v)))
	case datatype.Short:
		s.buf.PutInt16(int16(intOf(v)))
	case datatype.Char:
		s.buf.PutUint16(uint16(intOf(v)))
	case datatype.Int:
		s.buf.PutInt32(int32(intOf(v)))
	case datatype.Long:
		s.buf.PutInt64(intOf(v))
	case datatype.Float:
		s.buf.PutFloat32(float32(v.Float()))
	case datatype.Double:
		s.buf.PutFloat64(v.Float())
	case datatype.String:
		s.buf.PutString(v.String())
	case datatype.Enum:
		ev, ok := v.Interface().(datatype.EnumValue)
		if !ok {
			return fmt.Errorf("%w: %v is not an enum", datatype.ErrUnsupportedType, v.Type())
		}
		s.buf.PutString(ev.String())
	default:
		return fmt.Errorf("%w: %s cannot be a container element", datatype.ErrUnsupportedType, dt)
	}
	return nil
}

// discardField drops a partially written field, the position is reset to its header
func (s *BinarySerialiser) discardField(fd *field.WireDataFieldDescription) {
	_ = s.buf.SetPosition(fd.HeaderStart())
}

// getElement reads a single element and returns it as the primary class type of dt,
// enum elements are returned as their value name
func (s *BinarySerialiser) getElement(dt datatype.DataType) (any, error) {
	switch dt {
	case datatype.Bool:
		return s.buf.GetBool(), nil
	case datatype.Byte:
		return s.buf.GetByte(), nil
	case datatype.Short:
		return s.buf.GetInt16(), nil
	case datatype.Char:
		return s.buf.GetUint16(), nil
	case datatype.Int:
		return s.buf.GetInt32(), nil
	case datatype.Long:
		return s.buf.GetInt64(), nil
	case datatype.Float:
		return s.buf.GetFloat32(), nil
	case datatype.Double:
		return s.buf.GetFloat64(), nil
	case datatype.String, datatype.Enum:
		return s.buf.GetString(), nil
	}
	return nil, fmt.Errorf("%w: element type %s", ErrMalformedStream, dt)
}

// assign stores a decoded element into dst, converting between compatible kinds
func assign(dst reflect.Value, raw any, dt datatype.DataType) error {
	if dt == datatype.Enum && dst.Kind() != reflect.Interface && dst.Type().Implements(datatype.EnumType) {
		name, _ := raw.(string)
		return setEnum(dst, name, -1)
	}
	rv := reflect.ValueOf(raw)
	if dst.Kind() == reflect.Interface {
		if !rv.Type().AssignableTo(dst.Type()) {
			return fmt.Errorf("%w: cannot assign %v to %v", datatype.ErrUnsupportedType, rv.Type(), dst.Type())
		}
		dst.Set(rv)
		return nil
	}
	// int to string conversions are legal in Go but not meant here
	if (dst.Kind() == reflect.String) != (rv.Kind() == reflect.String) || !rv.Type().ConvertibleTo(dst.Type()) {
		return fmt.Errorf("%w: cannot convert %v to %v", datatype.ErrUnsupportedType, rv.Type(), dst.Type())
	}
	dst.Set(rv.Convert(dst.Type()))
	return nil
}

func (s *BinarySerialiser) getCount(what string) (int, error) {
	n := int(s.buf.GetInt32())
	if err := s.buf.Err(); err != nil {
		return 0, fmt.Errorf("%w: %s size: %v", ErrMalformedStream, what, err)
	}
	if n < 0 || n > s.buf.Remaining() {
		return 0, fmt.Errorf("%w: %s size %d with %d remaining bytes", ErrMalformedStream, what, n, s.buf.Remaining())
	}
	return n, nil
}

func (s *BinarySerialiser) getTypeByte(what string) (datatype.DataType, error) {
	dt, err := datatype.FromByte(s.buf.GetByte())
	if err != nil {
		return 0, fmt.Errorf("%w: %s type: %v", ErrMalformedStream, what, err)
	}
	return dt, s.buf.Err()
}

// sortedKeys returns the keys of a map in a deterministic order
func sortedKeys(m reflect.Value) []reflect.Value {
	keys := m.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int {
		if a.Kind() == reflect.Interface {
			a = a.Elem()
		}
		if b.Kind() == reflect.Interface {
			b = b.Elem()
		}
		if a.Kind() != b.Kind() {
			return cmp.Compare(a.Kind(), b.Kind())
		}
		switch {
		case a.CanInt():
			return cmp.Compare(a.Int(), b.Int())
		case a.CanUint():
			return cmp.Compare(a.Uint(), b.Uint())
		case a.CanFloat():
			return cmp.Compare(a.Float(), b.Float())
		case a.Kind() == reflect.String:
			return cmp.Compare(a.String(), b.String())
		case a.Kind() == reflect.Bool:
			return cmp.Compare(boolInt(a.Bool()), boolInt(b.Bool()))
		}
		return 0
	})
	return keys
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// --------------------------------------------------------------------------
// Collections
// --------------------------------------------------------------------------

func (s *BinarySerialiser) PutCollection(name string, v reflect.Value) error {
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return fmt.Errorf("%w: collection field %q of kind %v", datatype.ErrUnsupportedType, name, v.Kind())
	}
	var sample reflect.Value
	if v.Len() > 0 {
		sample = v.Index(0)
	}
	dt, err := elementType(v.Type().Elem(), sample)
	if err != nil {
		return fmt.Errorf("collection field %q: %w", name, err)
	}

	fd := s.PutFieldHeader(name, datatype.List)
	s.buf.PutByte(dt.AsByte())
	s.buf.PutInt32(int32(v.Len()))
	for i := 0; i < v.Len(); i++ {
		if err := s.putElement(dt, v.Index(i)); err != nil {
			s.discardField(fd)
			return fmt.Errorf("collection field %q element %d: %w", name, i, err)
		}
	}
	s.UpdateDataEndMarker(fd)
	return nil
}

func (s *BinarySerialiser) GetCollection(dst reflect.Value) error {
	dt, err := s.getTypeByte("collection element")
	if err != nil {
		return err
	}
	n, err := s.getCount("collection")
	if err != nil {
		return err
	}
	out := dst
	switch {
	case dst.Kind() == reflect.Array:
		if n > dst.Len() {
			return fmt.Errorf("%w: %d elements for %v", ErrMalformedStream, n, dst.Type())
		}
	case out.IsNil() || out.Cap() < n:
		out = reflect.MakeSlice(dst.Type(), n, n)
	default:
		out = out.Slice(0, n)
	}
	for i := 0; i < n; i++ {
		raw, err := s.getElement(dt)
		if err != nil {
			return err
		}
		if err := assign(out.Index(i), raw, dt); err != nil {
			return err
		}
	}
	if err := s.buf.Err(); err != nil {
		return fmt.Errorf("%w: collection: %v", ErrMalformedStream, err)
	}
	if dst.Kind() != reflect.Array {
		dst.Set(out)
	}
	return nil
}

// --------------------------------------------------------------------------
// Maps and sets
// --------------------------------------------------------------------------

func (s *BinarySerialiser) PutMap(name string, v reflect.Value) error {
	if v.Kind() != reflect.Map {
		return fmt.Errorf("%w: map field %q of kind %v", datatype.ErrUnsupportedType, name, v.Kind())
	}
	keys := sortedKeys(v)
	var keySample, valueSample reflect.Value
	if len(keys) > 0 {
		keySample, valueSample = keys[0], v.MapIndex(keys[0])
	}
	kt, err := elementType(v.Type().Key(), keySample)
	if err != nil {
		return fmt.Errorf("map field %q key: %w", name, err)
	}
	vt, err := elementType(v.Type().Elem(), valueSample)
	if err != nil {
		return fmt.Errorf("map field %q value: %w", name, err)
	}

	fd := s.PutFieldHeader(name, datatype.Map)
	s.buf.PutByte(kt.AsByte())
	s.buf.PutByte(vt.AsByte())
	s.buf.PutInt32(int32(len(keys)))
	for _, k := range keys {
		if err := s.putElement(kt, k); err != nil {
			s.discardField(fd)
			return fmt.Errorf("map field %q key: %w", name, err)
		}
		if err := s.putElement(vt, v.MapIndex(k)); err != nil {
			s.discardField(fd)
			return fmt.Errorf("map field %q value: %w", name, err)
		}
	}
	s.UpdateDataEndMarker(fd)
	return nil
}

func (s *BinarySerialiser) GetMap(dst reflect.Value) error {
	kt, err := s.getTypeByte("map key")
	if err != nil {
		return err
	}
	vt, err := s.getTypeByte("map value")
	if err != nil {
		return err
	}
	n, err := s.getCount("map")
	if err != nil {
		return err
	}
	if dst.IsNil() {
		dst.Set(reflect.MakeMapWithSize(dst.Type(), n))
	}
	key := reflect.New(dst.Type().Key()).Elem()
	value := reflect.New(dst.Type().Elem()).Elem()
	for i := 0; i < n; i++ {
		rawKey, err := s.getElement(kt)
		if err != nil {
			return err
		}
		rawValue, err := s.getElement(vt)
		if err != nil {
			return err
		}
		if err := assign(key, rawKey, kt); err != nil {
			return err
		}
		if err := assign(value, rawValue, vt); err != nil {
			return err
		}
		dst.SetMapIndex(key, value)
	}
	if err := s.buf.Err(); err != nil {
		return fmt.Errorf("%w: map: %v", ErrMalformedStream, err)
	}
	return nil
}

func (s *BinarySerialiser) PutSet(name string, v reflect.Value) error {
	if v.Kind() != reflect.Map {
		return fmt.Errorf("%w: set field %q of kind %v", datatype.ErrUnsupportedType, name, v.Kind())
	}
	keys := sortedKeys(v)
	var sample reflect.Value
	if len(keys) > 0 {
		sample = keys[0]
	}
	dt, err := elementType(v.Type().Key(), sample)
	if err != nil {
		return fmt.Errorf("set field %q: %w", name, err)
	}

	fd := s.PutFieldHeader(name, datatype.Set)
	s.buf.PutByte(dt.AsByte())
	s.buf.PutInt32(int32(len(keys)))
	for _, k := range keys {
		if err := s.putElement(dt, k); err != nil {
			s.discardField(fd)
			return fmt.Errorf("set field %q: %w", name, err)
		}
	}
	s.UpdateDataEndMarker(fd)
	return nil
}

func (s *BinarySerialiser) GetSet(dst reflect.Value) error {
	dt, err := s.getTypeByte("set element")
	if err != nil {
		return err
	}
	n, err := s.getCount("set")
	if err != nil {
		return err
	}
	if dst.IsNil() {
		dst.Set(reflect.MakeMapWithSize(dst.Type(), n))
	}
	key := reflect.New(dst.Type().Key()).Elem()
	present := reflect.New(dst.Type().Elem()).Elem()
	for i := 0; i < n; i++ {
		raw, err := s.getElement(dt)
		if err != nil {
			return err
		}
		if err := assign(key, raw, dt); err != nil {
			return err
		}
		dst.SetMapIndex(key, present)
	}
	if err := s.buf.Err(); err != nil {
		return fmt.Errorf("%w: set: %v", ErrMalformedStream, err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Enums
// --------------------------------------------------------------------------

func (s *BinarySerialiser) PutEnum(name string, v datatype.EnumValue) {
	fd := s.PutFieldHeader(name, datatype.Enum)
	s.buf.PutString(reflect.TypeOf(v).String())
	s.buf.PutString(v.String())
	s.buf.PutInt32(int32(slices.Index(v.EnumValues(), v.String())))
	s.UpdateDataEndMarker(fd)
}

func (s *BinarySerialiser) GetEnumInfo() EnumInfo {
	return EnumInfo{
		Type:    s.buf.GetString(),
		Name:    s.buf.GetString(),
		Ordinal: int(s.buf.GetInt32()),
	}
}

func (s *BinarySerialiser) GetEnum(dst reflect.Value) error {
	info := s.GetEnumInfo()
	if err := s.buf.Err(); err != nil {
		return fmt.Errorf("%w: enum: %v", ErrMalformedStream, err)
	}
	return setEnum(dst, info.Name, info.Ordinal)
}

// setEnum resolves name (falling back to ordinal) against the values of dst's type.
// The ordinal is stored for integer kinds, the name for string kinds.
func setEnum(dst reflect.Value, name string, ordinal int) error {
	ev, ok := dst.Interface().(datatype.EnumValue)
	if !ok {
		return fmt.Errorf("%w: %v is not an enum", datatype.ErrUnsupportedType, dst.Type())
	}
	values := ev.EnumValues()
	idx := slices.Index(values, name)
	if idx < 0 {
		if ordinal < 0 || ordinal >= len(values) {
			return fmt.Errorf("%w: %q for %v", ErrUnknownEnumValue, name, dst.Type())
		}
		idx = ordinal
	}
	switch {
	case dst.CanInt():
		dst.SetInt(int64(idx))
	case dst.CanUint():
		dst.SetUint(uint64(idx))
	case dst.Kind() == reflect.String:
		dst.SetString(values[idx])
	default:
		return fmt.Errorf("%w: enum %v of kind %v", datatype.ErrUnsupportedType, dst.Type(), dst.Kind())
	}
	return nil
}

// --------------------------------------------------------------------------
// Generic decoding
// --------------------------------------------------------------------------

// ReadValue decodes the payload of a parsed field into a generic Go value: scalars as
// their primary class type, arrays as slices, LIST and SET as []any, MAP as map[any]any
// and ENUM as EnumInfo. Markers and OTHER payloads decode to nil.
// The buffer position is left after the payload.
func ReadValue(s *BinarySerialiser, fd field.FieldDescription) (any, error) {
	if fd.DataStartPosition() < 0 {
		return nil, fmt.Errorf("%w: field %q has no data", ErrMalformedStream, fd.FieldName())
	}
	if err := s.buf.SetPosition(fd.DataStartPosition()); err != nil {
		return nil, fmt.Errorf("%w: field %q: %v", ErrMalformedStream, fd.FieldName(), err)
	}

	var value any
	var err error
	dt := fd.DataType()
	switch {
	case dt == datatype.StartMarker, dt == datatype.EndMarker, dt == datatype.Other:
		return nil, nil
	case dt.IsScalar():
		value, err = s.getElement(dt)
	case dt.IsArray():
		value, err = s.readArray(dt)
	case dt == datatype.Enum:
		value = s.GetEnumInfo()
	case dt == datatype.List, dt == datatype.Collection, dt == datatype.Queue:
		var list []any
		err = s.GetCollection(reflect.ValueOf(&list).Elem())
		value = list
	case dt == datatype.Set:
		set := map[any]struct{}{}
		err = s.GetSet(reflect.ValueOf(&set).Elem())
		keys := make([]any, 0, len(set))
		for _, k := range sortedKeys(reflect.ValueOf(set)) {
			keys = append(keys, k.Interface())
		}
		value = keys
	case dt == datatype.Map:
		m := map[any]any{}
		err = s.GetMap(reflect.ValueOf(&m).Elem())
		value = m
	default:
		return nil, fmt.Errorf("%w: %s", datatype.ErrUnsupportedType, dt)
	}
	if err != nil {
		return nil, err
	}
	if err := s.buf.Err(); err != nil {
		return nil, fmt.Errorf("%w: field %q: %v", ErrMalformedStream, fd.FieldName(), err)
	}
	return value, nil
}

func (s *BinarySerialiser) readArray(dt datatype.DataType) (any, error) {
	switch dt {
	case datatype.BoolArray:
		return s.GetBoolArray(nil), nil
	case datatype.ByteArray:
		return s.GetByteArray(nil), nil
	case datatype.ShortArray:
		return s.GetInt16Array(nil), nil
	case datatype.CharArray:
		return s.GetUint16Array(nil), nil
	case datatype.IntArray:
		return s.GetInt32Array(nil), nil
	case datatype.LongArray:
		return s.GetInt64Array(nil), nil
	case datatype.FloatArray:
		return s.GetFloat32Array(nil), nil
	case datatype.DoubleArray:
		return s.GetFloat64Array(nil), nil
	case datatype.StringArray:
		return s.GetStringArray(nil), nil
	}
	return nil, fmt.Errorf("%w: %s", datatype.ErrUnsupportedType, dt)
}

var _ IoSerialiser = (*BinarySerialiser)(nil)

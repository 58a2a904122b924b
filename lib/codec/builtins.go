package codec

import (
	"fmt"
	"reflect"
	"time"

	"github.com/ValentinKolb/dIO/lib/datatype"
	"github.com/ValentinKolb/dIO/lib/wire"
)

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// registerBuiltins adds the serialisers for all scalars, arrays, time types,
// containers and enums
func registerBuiltins(r *Registry) {
	builtins := []FieldSerialiser{
		scalarSerialiser(typeOf[bool]()),
		scalarSerialiser(typeOf[uint8]()),
		scalarSerialiser(typeOf[int8]()),
		scalarSerialiser(typeOf[int16]()),
		scalarSerialiser(typeOf[uint16]()),
		scalarSerialiser(typeOf[int32]()),
		scalarSerialiser(typeOf[uint32]()),
		scalarSerialiser(typeOf[int64]()),
		scalarSerialiser(typeOf[int]()),
		scalarSerialiser(typeOf[uint64]()),
		scalarSerialiser(typeOf[uint]()),
		scalarSerialiser(typeOf[float32]()),
		scalarSerialiser(typeOf[float64]()),
		scalarSerialiser(typeOf[string]()),

		arraySerialiser(typeOf[[]bool](), wire.IoSerialiser.PutBoolArray, wire.IoSerialiser.GetBoolArray),
		arraySerialiser(typeOf[[]uint8](), wire.IoSerialiser.PutByteArray, wire.IoSerialiser.GetByteArray),
		arraySerialiser(typeOf[[]int8](), wire.IoSerialiser.PutByteArray, wire.IoSerialiser.GetByteArray),
		arraySerialiser(typeOf[[]int16](), wire.IoSerialiser.PutInt16Array, wire.IoSerialiser.GetInt16Array),
		arraySerialiser(typeOf[[]uint16](), wire.IoSerialiser.PutUint16Array, wire.IoSerialiser.GetUint16Array),
		arraySerialiser(typeOf[[]int32](), wire.IoSerialiser.PutInt32Array, wire.IoSerialiser.GetInt32Array),
		arraySerialiser(typeOf[[]uint32](), wire.IoSerialiser.PutInt32Array, wire.IoSerialiser.GetInt32Array),
		arraySerialiser(typeOf[[]int64](), wire.IoSerialiser.PutInt64Array, wire.IoSerialiser.GetInt64Array),
		arraySerialiser(typeOf[[]int](), wire.IoSerialiser.PutInt64Array, wire.IoSerialiser.GetInt64Array),
		arraySerialiser(typeOf[[]uint64](), wire.IoSerialiser.PutInt64Array, wire.IoSerialiser.GetInt64Array),
		arraySerialiser(typeOf[[]uint](), wire.IoSerialiser.PutInt64Array, wire.IoSerialiser.GetInt64Array),
		arraySerialiser(typeOf[[]float32](), wire.IoSerialiser.PutFloat32Array, wire.IoSerialiser.GetFloat32Array),
		arraySerialiser(typeOf[[]float64](), wire.IoSerialiser.PutFloat64Array, wire.IoSerialiser.GetFloat64Array),
		arraySerialiser(typeOf[[]string](), wire.IoSerialiser.PutStringArray, wire.IoSerialiser.GetStringArray),

		timeSerialiser(),
		durationSerialiser(),

		NewValueSerialiser(
			func(io wire.IoSerialiser, dst reflect.Value) error { return io.GetCollection(dst) },
			func(io wire.IoSerialiser, name string, v reflect.Value) error { return io.PutCollection(name, v) },
			listPrototype),
		NewValueSerialiser(
			func(io wire.IoSerialiser, dst reflect.Value) error { return io.GetMap(dst) },
			func(io wire.IoSerialiser, name string, v reflect.Value) error { return io.PutMap(name, v) },
			mapPrototype),
		NewValueSerialiser(
			func(io wire.IoSerialiser, dst reflect.Value) error { return io.GetSet(dst) },
			func(io wire.IoSerialiser, name string, v reflect.Value) error { return io.PutSet(name, v) },
			setPrototype),
		NewValueSerialiser(
			func(io wire.IoSerialiser, dst reflect.Value) error { return io.GetEnum(dst) },
			func(io wire.IoSerialiser, name string, v reflect.Value) error {
				io.PutEnum(name, v.Interface().(datatype.EnumValue))
				return nil
			},
			datatype.EnumType),
	}
	for _, fs := range builtins {
		if err := r.AddClassDefinition(fs); err != nil {
			panic(err)
		}
	}
}

// --------------------------------------------------------------------------
// Scalars
// --------------------------------------------------------------------------

// bitsOf returns the integer value of v as raw bits
func bitsOf(v reflect.Value) uint64 {
	if v.CanInt() {
		return uint64(v.Int())
	}
	return v.Uint()
}

// setBits stores the width bit integer bits into dst, sign extended for signed kinds
func setBits(dst reflect.Value, bits uint64, width int) {
	if dst.CanInt() {
		shift := 64 - width
		dst.SetInt(int64(bits<<shift) >> shift)
		return
	}
	dst.SetUint(bits)
}

func scalarSerialiser(class reflect.Type) FieldSerialiser {
	dt, err := datatype.FromClassType(class)
	if err != nil {
		panic(err)
	}
	width := dt.PrimitiveSize() * 8

	write := func(io wire.IoSerialiser, name string, v reflect.Value) error {
		switch dt {
		case datatype.Bool:
			io.PutBool(name, v.Bool())
		case datatype.Byte:
			io.PutByte(name, byte(bitsOf(v)))
		case datatype.Short:
			io.PutInt16(name, int16(bitsOf(v)))
		case datatype.Char:
			io.PutUint16(name, uint16(bitsOf(v)))
		case datatype.Int:
			io.PutInt32(name, int32(bitsOf(v)))
		case datatype.Long:
			io.PutInt64(name, int64(bitsOf(v)))
		case datatype.Float:
			io.PutFloat32(name, float32(v.Float()))
		case datatype.Double:
			io.PutFloat64(name, v.Float())
		case datatype.String:
			io.PutString(name, v.String())
		}
		return nil
	}

	read := func(io wire.IoSerialiser, dst reflect.Value) error {
		switch dt {
		case datatype.Bool:
			dst.SetBool(io.GetBool())
		case datatype.Byte:
			setBits(dst, uint64(io.GetByte()), width)
		case datatype.Short:
			setBits(dst, uint64(uint16(io.GetInt16())), width)
		case datatype.Char:
			setBits(dst, uint64(io.GetUint16()), width)
		case datatype.Int:
			setBits(dst, uint64(uint32(io.GetInt32())), width)
		case datatype.Long:
			setBits(dst, uint64(io.GetInt64()), width)
		case datatype.Float:
			dst.SetFloat(float64(io.GetFloat32()))
		case datatype.Double:
			dst.SetFloat(io.GetFloat64())
		case datatype.String:
			dst.SetString(io.GetString())
		}
		return io.Buffer().Err()
	}

	return NewValueSerialiser(read, write, class)
}

// --------------------------------------------------------------------------
// Arrays
// --------------------------------------------------------------------------

// toSlice converts a slice value to []T, element wise if the types are not convertible
func toSlice[T any](v reflect.Value) []T {
	target := typeOf[[]T]()
	if v.Type() == target {
		return v.Interface().([]T)
	}
	if v.Kind() == reflect.Slice && v.Type().ConvertibleTo(target) {
		return v.Convert(target).Interface().([]T)
	}
	elem := target.Elem()
	out := make([]T, v.Len())
	for i := range out {
		out[i] = v.Index(i).Convert(elem).Interface().(T)
	}
	return out
}

// setSlice stores src into the slice (or array) dst, element wise if the types are not convertible
func setSlice[T any](dst reflect.Value, src []T) {
	rv := reflect.ValueOf(src)
	if dst.Kind() == reflect.Slice && rv.Type().ConvertibleTo(dst.Type()) {
		dst.Set(rv.Convert(dst.Type()))
		return
	}
	out := dst
	if dst.Kind() == reflect.Slice {
		out = reflect.MakeSlice(dst.Type(), len(src), len(src))
	}
	elem := dst.Type().Elem()
	for i := 0; i < len(src) && i < out.Len(); i++ {
		out.Index(i).Set(rv.Index(i).Convert(elem))
	}
	if dst.Kind() == reflect.Slice {
		dst.Set(out)
	}
}

func arraySerialiser[T any](class reflect.Type,
	put func(io wire.IoSerialiser, name string, v []T, dims ...int) error,
	get func(io wire.IoSerialiser, dst []T) []T,
) FieldSerialiser {
	target := typeOf[[]T]()

	write := func(io wire.IoSerialiser, name string, v reflect.Value) error {
		return put(io, name, toSlice[T](v))
	}

	read := func(io wire.IoSerialiser, dst reflect.Value) error {
		// reuse the existing storage if the field already has the wire element type
		var current []T
		if dst.Type() == target {
			current = dst.Interface().([]T)
		}
		values := get(io, current)
		if err := io.Buffer().Err(); err != nil {
			return fmt.Errorf("%w: %v", wire.ErrMalformedStream, err)
		}
		setSlice(dst, values)
		return nil
	}

	return NewValueSerialiser(read, write, class)
}

// --------------------------------------------------------------------------
// Time
// --------------------------------------------------------------------------

// timeSerialiser writes time.Time as RFC 3339 string payload inside an OTHER envelope
func timeSerialiser() FieldSerialiser {
	return NewValueSerialiser(
		func(io wire.IoSerialiser, dst reflect.Value) error {
			t, err := time.Parse(time.RFC3339Nano, io.GetString())
			if err != nil {
				return fmt.Errorf("%w: time value: %v", wire.ErrMalformedStream, err)
			}
			dst.Set(reflect.ValueOf(t))
			return nil
		},
		func(io wire.IoSerialiser, _ string, v reflect.Value) error {
			io.Buffer().PutString(v.Interface().(time.Time).Format(time.RFC3339Nano))
			return nil
		},
		typeOf[time.Time]())
}

func durationSerialiser() FieldSerialiser {
	return NewValueSerialiser(
		func(io wire.IoSerialiser, dst reflect.Value) error {
			dst.SetInt(io.GetInt64())
			return io.Buffer().Err()
		},
		func(io wire.IoSerialiser, name string, v reflect.Value) error {
			io.PutInt64(name, v.Int())
			return nil
		},
		typeOf[time.Duration]())
}

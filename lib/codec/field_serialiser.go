package codec

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/ValentinKolb/dIO/lib/wire"
)

var (
	// ErrInvalidRegistration is returned for a nil serialiser, class prototype or generic prototype
	ErrInvalidRegistration = errors.New("invalid field serialiser registration")
	// ErrNotSettable is returned if a value cannot be written by reflection
	ErrNotSettable = errors.New("value is not settable")
	// ErrInvalidTarget is returned if DeserialiseObject is not given a non-nil pointer
	ErrInvalidTarget = errors.New("deserialisation target must be a non-nil pointer")
	// ErrNoReturnFunction is returned by ReturnObject of serialisers built without a returner
	ErrNoReturnFunction = errors.New("field serialiser has no return function")
)

// ReadFunc reads the payload at the current buffer position into the field of obj
type ReadFunc func(io wire.IoSerialiser, obj reflect.Value, field *ClassFieldDescription) error

// WriteFunc writes the field of obj
type WriteFunc func(io wire.IoSerialiser, obj reflect.Value, field *ClassFieldDescription) error

// ReturnFunc reads the payload at the current buffer position and returns it as a new
// value of the field type
type ReturnFunc func(io wire.IoSerialiser, obj reflect.Value, field *ClassFieldDescription) (any, error)

// FieldSerialiser reads and writes values of one class prototype (optionally
// specialised by generic argument prototypes).
type FieldSerialiser interface {
	ReadField(io wire.IoSerialiser, obj reflect.Value, field *ClassFieldDescription) error
	WriteField(io wire.IoSerialiser, obj reflect.Value, field *ClassFieldDescription) error
	ReturnObject(io wire.IoSerialiser, obj reflect.Value, field *ClassFieldDescription) (any, error)
	ClassPrototype() reflect.Type
	GenericsPrototypes() []reflect.Type
}

type fieldSerialiser struct {
	reader   ReadFunc
	writer   WriteFunc
	returner ReturnFunc
	class    reflect.Type
	generics []reflect.Type
}

// NewFieldSerialiser builds a FieldSerialiser from functions. returner may be nil.
func NewFieldSerialiser(reader ReadFunc, writer WriteFunc, returner ReturnFunc, class reflect.Type, generics ...reflect.Type) FieldSerialiser {
	return &fieldSerialiser{
		reader:   reader,
		writer:   writer,
		returner: returner,
		class:    class,
		generics: generics,
	}
}

func (f *fieldSerialiser) ReadField(io wire.IoSerialiser, obj reflect.Value, field *ClassFieldDescription) error {
	return f.reader(io, obj, field)
}

func (f *fieldSerialiser) WriteField(io wire.IoSerialiser, obj reflect.Value, field *ClassFieldDescription) error {
	return f.writer(io, obj, field)
}

func (f *fieldSerialiser) ReturnObject(io wire.IoSerialiser, obj reflect.Value, field *ClassFieldDescription) (any, error) {
	if f.returner == nil {
		return nil, fmt.Errorf("%w: %v", ErrNoReturnFunction, f.class)
	}
	return f.returner(io, obj, field)
}

func (f *fieldSerialiser) ClassPrototype() reflect.Type { return f.class }

func (f *fieldSerialiser) GenericsPrototypes() []reflect.Type { return f.generics }

func (f *fieldSerialiser) String() string {
	if len(f.generics) == 0 {
		return fmt.Sprintf("FieldSerialiser[%v]", f.class)
	}
	return fmt.Sprintf("FieldSerialiser[%v%v]", f.class, f.generics)
}

// --------------------------------------------------------------------------
// Value serialisers
// --------------------------------------------------------------------------

// ValueWriteFunc writes v (pointers already followed) as a field named name
type ValueWriteFunc func(io wire.IoSerialiser, name string, v reflect.Value) error

// ValueReadFunc reads the payload at the current position into the settable dst
type ValueReadFunc func(io wire.IoSerialiser, dst reflect.Value) error

// NewValueSerialiser builds a FieldSerialiser that works on the field value only:
// reading allocates the member, writing gets it with pointers followed and
// ReturnObject reads into a fresh value of the field type.
func NewValueSerialiser(read ValueReadFunc, write ValueWriteFunc, class reflect.Type, generics ...reflect.Type) FieldSerialiser {
	return NewFieldSerialiser(
		func(io wire.IoSerialiser, obj reflect.Value, field *ClassFieldDescription) error {
			dst, err := field.AllocateMemberClassField(obj)
			if err != nil {
				return err
			}
			return read(io, dst)
		},
		func(io wire.IoSerialiser, obj reflect.Value, field *ClassFieldDescription) error {
			v := field.Get(obj)
			if !v.IsValid() {
				return nil
			}
			return write(io, field.FieldName(), v)
		},
		func(io wire.IoSerialiser, obj reflect.Value, field *ClassFieldDescription) (any, error) {
			dst := reflect.New(field.Type()).Elem()
			if err := read(io, dst); err != nil {
				return nil, err
			}
			return dst.Interface(), nil
		},
		class, generics...)
}

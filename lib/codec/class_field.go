package codec

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ValentinKolb/dIO/lib/datatype"
	"github.com/ValentinKolb/dIO/lib/field"
)

// ClassFieldDescription describes a struct field (or a root type) for the codec.
// Pointer types are described by their element type, the pointer itself is allocated on
// demand. Children are built lazily, so recursive types are fine.
type ClassFieldDescription struct {
	registry *Registry
	parent   *ClassFieldDescription

	name     string
	hash     int32
	index    []int        // field index path relative to the parent struct, nil for the root
	declared reflect.Type // declared type, may be a pointer
	typ      reflect.Type // declared type without pointer indirections
	dataType datatype.DataType
	typeArgs []reflect.Type
	final    bool

	childOnce sync.Once
	children  []field.FieldDescription

	memo atomic.Pointer[serialiserMemo]
}

// serialiserMemo caches the resolved serialiser for one registry generation
type serialiserMemo struct {
	generation uint64
	fs         FieldSerialiser
}

func newClassFieldDescription(registry *Registry, parent *ClassFieldDescription, name string, index []int, declared reflect.Type) *ClassFieldDescription {
	typ := declared
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	dt, err := datatype.FromClassType(typ)
	if err != nil {
		dt = datatype.Other
	}

	var typeArgs []reflect.Type
	switch typ.Kind() {
	case reflect.Slice, reflect.Array:
		typeArgs = []reflect.Type{typ.Elem()}
	case reflect.Map:
		typeArgs = []reflect.Type{typ.Key(), typ.Elem()}
	}

	return &ClassFieldDescription{
		registry: registry,
		parent:   parent,
		name:     name,
		hash:     field.HashName(name),
		index:    index,
		declared: declared,
		typ:      typ,
		dataType: dt,
		typeArgs: typeArgs,
	}
}

// rootName is the wire name of a root descriptor (and the type hint of a stream)
func rootName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

// --------------------------------------------------------------------------
// Tree construction
// --------------------------------------------------------------------------

func (c *ClassFieldDescription) buildChildren() {
	if c.typ.Kind() != reflect.Struct {
		return
	}
	c.children = c.appendStructFields(c.children, c.typ, nil)
}

// appendStructFields adds the exported fields of t, embedded structs are flattened
func (c *ClassFieldDescription) appendStructFields(out []field.FieldDescription, t reflect.Type, prefix []int) []field.FieldDescription {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, hasTag := sf.Tag.Lookup("io")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")

		index := make([]int, len(prefix)+1)
		copy(index, prefix)
		index[len(prefix)] = i

		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && (!hasTag || name == "") {
			out = c.appendStructFields(out, sf.Type, index)
			continue
		}
		if !sf.IsExported() {
			continue
		}
		switch sf.Type.Kind() {
		case reflect.Chan, reflect.Func, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
			Logger.Debugf("field %s.%s of type %v cannot be serialised, skipped", c.typ, sf.Name, sf.Type)
			continue
		}
		if name == "" {
			name = sf.Name
		}

		child := newClassFieldDescription(c.registry, c, name, index, sf.Type)
		child.final = strings.Contains(","+opts+",", ",final,")
		out = append(out, child)
	}
	return out
}

// --------------------------------------------------------------------------
// FieldDescription interface
// --------------------------------------------------------------------------

func (c *ClassFieldDescription) FieldNameHashCode() int32 { return c.hash }

func (c *ClassFieldDescription) FieldName() string { return c.name }

func (c *ClassFieldDescription) DataType() datatype.DataType { return c.dataType }

func (c *ClassFieldDescription) DataDimensions() []int { return nil }

func (c *ClassFieldDescription) DataStartPosition() int { return -1 }

func (c *ClassFieldDescription) DataStartOffset() int { return -1 }

func (c *ClassFieldDescription) DataSize() int { return -1 }

func (c *ClassFieldDescription) Parent() field.FieldDescription {
	if c.parent == nil {
		return nil
	}
	return c.parent
}

func (c *ClassFieldDescription) Children() []field.FieldDescription {
	c.childOnce.Do(c.buildChildren)
	return c.children
}

func (c *ClassFieldDescription) FindChildField(hash int32, name string) field.FieldDescription {
	return field.FindChild(c.Children(), hash, name)
}

// PrintFieldStructure prints the descriptor tree, recursive types are printed once
func (c *ClassFieldDescription) PrintFieldStructure(w io.Writer) {
	c.print(w, 0, map[reflect.Type]bool{})
}

func (c *ClassFieldDescription) print(w io.Writer, level int, seen map[reflect.Type]bool) {
	flags := ""
	if c.final {
		flags = " final"
	}
	fmt.Fprintf(w, "%s%s %v (%s)%s\n", strings.Repeat("  ", level), c.name, c.declared, c.dataType, flags)
	if seen[c.typ] {
		return
	}
	seen[c.typ] = true
	for _, child := range c.Children() {
		child.(*ClassFieldDescription).print(w, level+1, seen)
	}
	delete(seen, c.typ)
}

// --------------------------------------------------------------------------
// Reflection accessors
// --------------------------------------------------------------------------

// Type returns the field type without pointer indirections
func (c *ClassFieldDescription) Type() reflect.Type { return c.typ }

// DeclaredType returns the field type as declared in the struct
func (c *ClassFieldDescription) DeclaredType() reflect.Type { return c.declared }

// ActualTypeArguments returns [elem] for slices and arrays, [key, elem] for maps
func (c *ClassFieldDescription) ActualTypeArguments() []reflect.Type { return c.typeArgs }

// IsFinal reports whether the field is tagged final
func (c *ClassFieldDescription) IsFinal() bool { return c.final }

// IsRoot reports whether the descriptor describes a root type instead of a struct field
func (c *ClassFieldDescription) IsRoot() bool { return c.index == nil }

// Registry returns the registry the descriptor resolves serialisers with
func (c *ClassFieldDescription) Registry() *Registry { return c.registry }

// raw returns the field of obj as declared (pointers not followed). For the root the
// object itself is returned.
func (c *ClassFieldDescription) raw(obj reflect.Value) reflect.Value {
	if c.index == nil {
		return obj
	}
	for obj.Kind() == reflect.Pointer {
		if obj.IsNil() {
			return reflect.Value{}
		}
		obj = obj.Elem()
	}
	return obj.FieldByIndex(c.index)
}

// IsNil reports whether the field of obj is a nil pointer, slice, map or interface
func (c *ClassFieldDescription) IsNil(obj reflect.Value) bool {
	v := c.raw(obj)
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// Get returns the value of the field in obj with pointers followed. The result is
// invalid if a pointer on the way is nil.
func (c *ClassFieldDescription) Get(obj reflect.Value) reflect.Value {
	v := c.raw(obj)
	for v.IsValid() && v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// AllocateMemberClassField returns the settable value of the field in obj, nil
// pointers on the way are allocated. obj must be addressable.
func (c *ClassFieldDescription) AllocateMemberClassField(obj reflect.Value) (reflect.Value, error) {
	v := c.raw(obj)
	if !v.IsValid() {
		return v, fmt.Errorf("%w: parent of %q is nil", ErrNotSettable, c.name)
	}
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			if !v.CanSet() {
				return reflect.Value{}, fmt.Errorf("%w: %q", ErrNotSettable, c.name)
			}
			v.Set(reflect.New(v.Type().Elem()))
		}
		v = v.Elem()
	}
	if !v.CanSet() {
		return reflect.Value{}, fmt.Errorf("%w: %q", ErrNotSettable, c.name)
	}
	return v, nil
}

// FieldSerialiser returns the serialiser resolved for this field, nil if there is none.
// The result is memoised until the registry changes.
func (c *ClassFieldDescription) FieldSerialiser() FieldSerialiser {
	generation := c.registry.generation.Load()
	if m := c.memo.Load(); m != nil && m.generation == generation {
		return m.fs
	}
	fs := c.registry.FindFieldSerialiser(c.typ, c.typeArgs...)
	c.memo.Store(&serialiserMemo{generation: generation, fs: fs})
	return fs
}

func (c *ClassFieldDescription) String() string {
	return fmt.Sprintf("%s %v (%s)", c.name, c.declared, c.dataType)
}

package codec

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/ValentinKolb/dIO/lib/datatype"
	"github.com/ValentinKolb/dIO/lib/field"
	"github.com/stretchr/testify/require"
)

type base struct {
	ID int64
}

type tagged struct {
	base
	Name     string  `io:"name"`
	Version  int32   `io:",final"`
	Skipped  float64 `io:"-"`
	Weights  map[string]float64
	Values   []int16
	Next     *tagged
	hidden   int
	Callback func()
}

func childNames(cfd *ClassFieldDescription) []string {
	var names []string
	for _, c := range cfd.Children() {
		names = append(names, c.FieldName())
	}
	return names
}

func TestClassFieldDescription(t *testing.T) {
	r := NewDefaultRegistry()
	root := r.ClassDescription(reflect.TypeOf(&tagged{}))
	require.True(t, root == r.ClassDescription(reflect.TypeOf(tagged{})))
	require.True(t, root.IsRoot())
	require.Equal(t, "tagged", root.FieldName())
	require.Equal(t, datatype.Other, root.DataType())
	require.Nil(t, root.Parent())

	require.Equal(t, []string{"ID", "name", "Version", "Weights", "Values", "Next"}, childNames(root))

	version := root.FindChildField(field.HashName("Version"), "Version").(*ClassFieldDescription)
	require.True(t, version.IsFinal())
	require.Equal(t, datatype.Int, version.DataType())
	require.True(t, version.Parent() == field.FieldDescription(root))

	weights := root.FindChildField(field.HashName("Weights"), "Weights").(*ClassFieldDescription)
	require.Equal(t, []reflect.Type{typeOf[string](), typeOf[float64]()}, weights.ActualTypeArguments())
	require.Equal(t, datatype.Map, weights.DataType())

	values := root.FindChildField(field.HashName("Values"), "Values").(*ClassFieldDescription)
	require.Equal(t, []reflect.Type{typeOf[int16]()}, values.ActualTypeArguments())
	require.Equal(t, typeOf[[]int16](), values.FieldSerialiser().ClassPrototype())

	// recursive types are expanded lazily
	next := root.FindChildField(field.HashName("Next"), "Next").(*ClassFieldDescription)
	require.Equal(t, typeOf[tagged](), next.Type())
	require.Equal(t, typeOf[*tagged](), next.DeclaredType())
	require.Equal(t, childNames(root), childNames(next))
	require.Nil(t, next.FieldSerialiser())
}

func TestClassFieldAccess(t *testing.T) {
	r := NewDefaultRegistry()
	root := r.ClassDescription(typeOf[tagged]())
	next := root.FindChildField(field.HashName("Next"), "Next").(*ClassFieldDescription)
	id := root.FindChildField(field.HashName("ID"), "ID").(*ClassFieldDescription)

	obj := reflect.ValueOf(&tagged{base: base{ID: 7}}).Elem()
	require.Equal(t, int64(7), id.Get(obj).Int())
	require.True(t, next.IsNil(obj))
	require.False(t, next.Get(obj).IsValid())

	member, err := next.AllocateMemberClassField(obj)
	require.NoError(t, err)
	require.Equal(t, typeOf[tagged](), member.Type())
	require.False(t, next.IsNil(obj))
	member.FieldByName("Name").SetString("allocated")
	require.Equal(t, "allocated", obj.Interface().(tagged).Next.Name)

	// values that are not addressable cannot be allocated into
	_, err = next.AllocateMemberClassField(reflect.ValueOf(tagged{}))
	require.ErrorIs(t, err, ErrNotSettable)

	require.True(t, root.Get(obj).Interface().(tagged).ID == 7)
}

func TestClassFieldSerialiserMemo(t *testing.T) {
	r := NewDefaultRegistry()
	type point struct{ X, Y float64 }
	type holder struct{ P point }

	root := r.ClassDescription(typeOf[holder]())
	p := root.Children()[0].(*ClassFieldDescription)
	require.Nil(t, p.FieldSerialiser())

	custom := dummy(typeOf[point]())
	require.NoError(t, r.AddClassDefinition(custom))
	require.True(t, p.FieldSerialiser() == custom)
}

func TestPrintClassFieldStructure(t *testing.T) {
	r := NewDefaultRegistry()
	var out bytes.Buffer
	r.ClassDescription(typeOf[tagged]()).PrintFieldStructure(&out)
	text := out.String()
	require.Contains(t, text, "tagged codec.tagged (other)")
	require.Contains(t, text, "  Version int32 (int) final")
	require.Contains(t, text, "  Next *codec.tagged (other)")
}

package inspect

import (
	"bytes"
	"testing"

	"github.com/ValentinKolb/dIO/cmd/sample"
	"github.com/ValentinKolb/dIO/lib/buffer"
	"github.com/ValentinKolb/dIO/lib/serializer"
	"github.com/stretchr/testify/require"
)

func TestInspectRecord(t *testing.T) {
	rec := sample.NewRecord("probe")
	data, err := serializer.NewBinarySerializer().Serialize(&rec)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Inspect(&out, buffer.WrapByteBuffer(data)))

	s := out.String()
	require.Contains(t, s, "producer dIO.BinarySerialiser v1.0.0")
	require.Contains(t, s, "Record (bos)")
	require.Contains(t, s, `Name (string)`)
	require.Contains(t, s, `= "probe"`)
	require.Contains(t, s, "Counter (int)")
	require.Contains(t, s, "= 42")
	require.Contains(t, s, "(16 elements)")
	require.Contains(t, s, "Labels (set)")
	require.Contains(t, s, "Level (enum)")
	require.Contains(t, s, "Created (other)")
	require.Contains(t, s, "<opaque>")
}

func TestInspectNested(t *testing.T) {
	data, err := serializer.NewBinarySerializer().Serialize(sample.NewNested())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Inspect(&out, buffer.WrapByteBuffer(data)))
	require.Contains(t, out.String(), "\n  Parent (bos)")
	require.Contains(t, out.String(), "\n    Record (bos)")
	require.Contains(t, out.String(), "matrix (float[])")
}

func TestInspectRejectsGarbage(t *testing.T) {
	var out bytes.Buffer
	require.Error(t, Inspect(&out, buffer.WrapByteBuffer([]byte{0, 0, 0, 1})))
}

func TestFormatValue(t *testing.T) {
	require.Equal(t, "<nil>", formatValue(nil))
	require.Equal(t, "[1 2]", formatValue([]int32{1, 2}))
	require.Equal(t, "[0 1 2 3 4 5 6 7] ... (10 elements)", formatValue([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}))
	require.Equal(t, `"x"`, formatValue("x"))
}

package sample

import (
	"testing"

	"github.com/ValentinKolb/dIO/lib/dataset"
	"github.com/ValentinKolb/dIO/lib/serializer"
	"github.com/stretchr/testify/require"
)

func TestSamplesRoundTrip(t *testing.T) {
	s := serializer.NewBinarySerializer()

	for _, kind := range Kinds {
		t.Run(kind, func(t *testing.T) {
			value, ok := Build(kind)
			require.True(t, ok)

			data, err := s.Serialize(value)
			require.NoError(t, err)

			switch want := value.(type) {
			case *Record:
				var got Record
				require.NoError(t, s.Deserialize(data, &got))
				require.Equal(t, *want, got)
			case *Nested:
				var got Nested
				require.NoError(t, s.Deserialize(data, &got))
				require.Equal(t, *want, got)
			case *Measurement:
				var got Measurement
				require.NoError(t, s.Deserialize(data, &got))
				require.Equal(t, want.Device, got.Device)
				require.True(t, dataset.Equal(want.Data, got.Data))
			default:
				t.Fatalf("unexpected sample type %T", value)
			}
		})
	}

	_, ok := Build("unknown")
	require.False(t, ok)
}

func TestLevelString(t *testing.T) {
	require.Equal(t, "HIGH", LevelHigh.String())
	require.Equal(t, "UNKNOWN", Level(7).String())
}

package serializer

import (
	"reflect"
	"sync"
	"testing"

	"github.com/ValentinKolb/dIO/lib/codec"
	"github.com/ValentinKolb/dIO/lib/common"
	"github.com/ValentinKolb/dIO/lib/dataset"
	"github.com/ValentinKolb/dIO/lib/wire"
	"github.com/stretchr/testify/require"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() ISerializer{
	"JSON":       NewJSONSerializer,
	"GOB":        NewGOBSerializer,
	"Binary":     NewBinarySerializer,
	"BinaryFast": newFastBinarySerializer,
}

func newFastBinarySerializer() ISerializer {
	conf := common.DefaultConfig()
	conf.Buffer = common.BufferKindFast
	return NewBinarySerializerWithConfig(conf, Registry())
}

type testChild struct {
	ID    int64
	Label string
}

type testRecord struct {
	Name    string
	Count   int32
	Ratio   float64
	Samples []float64
	Flags   []bool
	Tags    map[string]int64
	Child   *testChild
}

// testRecords creates a set of test records with different fields filled
func testRecords() []testRecord {
	return []testRecord{
		// Zero record
		{},

		// Scalars only
		{Name: "scalars", Count: -7, Ratio: 0.25},

		// Arrays
		{
			Name:    "arrays",
			Samples: []float64{1.5, -2.25, 1e-9},
			Flags:   []bool{true, false, true},
		},

		// Map and nested record
		{
			Name:  "nested",
			Tags:  map[string]int64{"a": 1, "b": -2},
			Child: &testChild{ID: 42, Label: "child"},
		},

		// Record with all fields filled
		{
			Name:    "complete",
			Count:   1 << 20,
			Ratio:   3.14159,
			Samples: []float64{0, 1, 2, 3, 4, 5, 6, 7},
			Flags:   []bool{false},
			Tags:    map[string]int64{"x": 1 << 40},
			Child:   &testChild{ID: -1, Label: "üñí"},
		},
	}
}

// TestSerializerRoundTrip tests that records can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	records := testRecords()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, rec := range records {
				// Serialize
				data, err := serializer.Serialize(rec)
				if err != nil {
					t.Errorf("Failed to serialize record %d: %v", i, err)
					continue
				}

				// Deserialize
				var result testRecord
				err = serializer.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize record %d: %v", i, err)
					continue
				}

				// Compare
				if !reflect.DeepEqual(rec, result) {
					t.Errorf("Record %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
						i, rec, result)
				}
			}
		})
	}
}

// TestConcurrentUse runs all serializers from several goroutines at once
func TestConcurrentUse(t *testing.T) {
	records := testRecords()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			var wg sync.WaitGroup
			errs := make(chan error, 8*len(records))
			for g := 0; g < 8; g++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for _, rec := range records {
						data, err := serializer.Serialize(rec)
						if err != nil {
							errs <- err
							continue
						}
						var result testRecord
						if err := serializer.Deserialize(data, &result); err != nil {
							errs <- err
						}
					}
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				t.Errorf("concurrent round trip failed: %v", err)
			}
		})
	}
}

// TestBinaryDataSet round trips a data set member, which only the binary serializer supports
func TestBinaryDataSet(t *testing.T) {
	type measurement struct {
		Device string
		Data   *dataset.DoubleDataSet
	}

	ds := dataset.NewDoubleDataSet("scan", 4)
	ds.Add(1, 10, 0)
	ds.Add(2, 20, 0)
	ds.PutMetaData("unit", "V")

	s := NewBinarySerializer()
	data, err := s.Serialize(&measurement{Device: "probe", Data: ds})
	require.NoError(t, err)

	var out measurement
	require.NoError(t, s.Deserialize(data, &out))
	require.Equal(t, "probe", out.Device)
	require.NotNil(t, out.Data)
	require.True(t, dataset.Equal(ds, out.Data), "got %v", out.Data)
}

// TestBinaryPoolShrinksBuffers checks that large payloads do not pin large pooled buffers
func TestBinaryPoolShrinksBuffers(t *testing.T) {
	conf := common.DefaultConfig()
	conf.InitialCapacity = 64
	conf.MaxPooledCapacity = 1024
	s := NewBinarySerializerWithConfig(conf, Registry()).(*binarySerializerImpl)

	big := testRecord{Samples: make([]float64, 4096)}
	data, err := s.Serialize(big)
	require.NoError(t, err)
	require.Greater(t, len(data), 4096*8)

	p := s.pool.Get().(*pooledSerialiser)
	require.LessOrEqual(t, p.buf.Capacity(), conf.MaxPooledCapacity)
	s.pool.Put(p)

	var out testRecord
	require.NoError(t, s.Deserialize(data, &out))
	require.Len(t, out.Samples, 4096)
}

// TestInvalidBinaryData tests how the binary serializer handles corrupt or invalid data
func TestInvalidBinaryData(t *testing.T) {
	serializer := NewBinarySerializer()

	headerOnly, err := serializer.Serialize(nil)
	require.NoError(t, err)

	valid, err := serializer.Serialize(testRecords()[4])
	require.NoError(t, err)

	testCases := []struct {
		name        string
		data        []byte
		expectError bool
	}{
		{
			name:        "Empty data",
			data:        []byte{},
			expectError: true,
		},
		{
			name:        "Too short header",
			data:        headerOnly[:3],
			expectError: true,
		},
		{
			name:        "Valid header only",
			data:        headerOnly,
			expectError: false,
		},
		{
			name:        "Truncated stream",
			data:        valid[:len(valid)/2],
			expectError: true,
		},
		{
			name:        "Wrong producer",
			data:        append([]byte{0, 0, 0, 3, 'f', 'o', 'o'}, headerOnly[4+len(wire.ProducerName):]...),
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var rec testRecord
			err := serializer.Deserialize(tc.data, &rec)

			if tc.expectError && err == nil {
				t.Errorf("Expected error but got none")
			} else if !tc.expectError && err != nil {
				t.Errorf("Did not expect error but got: %v", err)
			}
		})
	}
}

// TestRejectsInvalidTarget checks that the target of Deserialize must be a non-nil pointer
func TestRejectsInvalidTarget(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			s := factory()
			data, err := s.Serialize(testRecords()[1])
			require.NoError(t, err)
			require.ErrorIs(t, s.Deserialize(data, testRecord{}), codec.ErrInvalidTarget)
			require.ErrorIs(t, s.Deserialize(data, (*testRecord)(nil)), codec.ErrInvalidTarget)
			require.ErrorIs(t, s.Deserialize(data, nil), codec.ErrInvalidTarget)
		})
	}
}

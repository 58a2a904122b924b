package sample

import (
	"math"
	"time"

	"github.com/ValentinKolb/dIO/lib/dataset"
)

// Level is written as ENUM
type Level int

const (
	LevelLow Level = iota
	LevelNormal
	LevelHigh
)

func (l Level) EnumValues() []string { return []string{"LOW", "NORMAL", "HIGH"} }

func (l Level) String() string {
	if l < 0 || int(l) >= len(l.EnumValues()) {
		return "UNKNOWN"
	}
	return l.EnumValues()[l]
}

// Record exercises scalars, arrays, maps, sets, enums and time values
type Record struct {
	Name    string
	Counter int32
	Ratio   float64
	Samples []float64
	Flags   []bool
	Tags    map[string]int64
	Labels  map[string]struct{}
	Level   Level
	Created time.Time
	Timeout time.Duration
}

// Nested exercises nested structs, pointers and renamed fields
type Nested struct {
	ID      int64
	Record  Record
	Parent  *Nested
	Matrix  []float32 `io:"matrix"`
	Steps   []string
	Comment string `io:"-"`
}

// Measurement holds a data set member, written through the custom DataSet serialiser
type Measurement struct {
	Device string
	Data   *dataset.DoubleDataSet
}

// Kinds lists the sample kinds accepted by Build
var Kinds = []string{"record", "nested", "dataset"}

// NewRecord returns a deterministic Record
func NewRecord(name string) Record {
	samples := make([]float64, 16)
	for i := range samples {
		samples[i] = math.Sin(float64(i) / 4)
	}
	return Record{
		Name:    name,
		Counter: 42,
		Ratio:   0.75,
		Samples: samples,
		Flags:   []bool{true, false, true},
		Tags:    map[string]int64{"retries": 3, "shard": 100},
		Labels:  map[string]struct{}{"beam": {}, "ring": {}},
		Level:   LevelHigh,
		Created: time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC),
		Timeout: 1500 * time.Millisecond,
	}
}

// NewNested returns a two level Nested value
func NewNested() *Nested {
	return &Nested{
		ID:     2,
		Record: NewRecord("child"),
		Parent: &Nested{
			ID:     1,
			Record: NewRecord("parent"),
			Steps:  []string{"init"},
		},
		Matrix: []float32{1, 0, 0, 1},
		Steps:  []string{"init", "ramp", "flat top"},
	}
}

// NewMeasurement returns a Measurement with a small gaussian data set
func NewMeasurement() *Measurement {
	ds := dataset.NewDoubleDataSet("gaussian", 32)
	for i := -10; i <= 10; i++ {
		x := float64(i) / 2
		ds.AddAsymmetric(x, math.Exp(-x*x/2), 0.01, 0.02)
	}
	ds.AddDataLabel(10, "peak")
	ds.PutMetaData("unit", "mA")
	ds.AddInfo("simulated")
	return &Measurement{Device: "BPM01", Data: ds}
}

// Build returns the sample value of the given kind
func Build(kind string) (any, bool) {
	switch kind {
	case "record":
		rec := NewRecord("record")
		return &rec, true
	case "nested":
		return NewNested(), true
	case "dataset":
		return NewMeasurement(), true
	default:
		return nil, false
	}
}

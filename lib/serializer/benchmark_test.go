package serializer

import (
	"testing"
)

// benchmarkRecords returns a set of records for targeted benchmarking
func benchmarkRecords() map[string]testRecord {
	return map[string]testRecord{
		"SmallScalars": {
			Name:  "s",
			Count: 1,
		},
		"MediumNested": {
			Name:  "medium-length-name-for-testing",
			Ratio: 0.5,
			Tags:  map[string]int64{"a": 1, "b": 2, "c": 3},
			Child: &testChild{ID: 1, Label: "child"},
		},
		"SmallArray": {
			Name:    "array",
			Samples: make([]float64, 16),
		},
		"LargeArray": {
			Name:    "array",
			Samples: make([]float64, 1024*8), // 64KB of data
		},
		"Empty":          {},
		"CompleteRecord": testRecords()[4],
	}
}

// BenchmarkSerialize benchmarks serialization for all implementations with various records
func BenchmarkSerialize(b *testing.B) {
	records := benchmarkRecords()

	for name, factory := range testSerializers {
		for recName, rec := range records {
			b.Run(name+"_"+recName, func(b *testing.B) {
				serializer := factory()
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					_, err := serializer.Serialize(rec)
					if err != nil {
						b.Fatalf("Failed to serialize: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkDeserialize benchmarks deserialization for all implementations with various records
func BenchmarkDeserialize(b *testing.B) {
	records := benchmarkRecords()
	serializedData := make(map[string]map[string][]byte)

	// Pre-serialize all records with all serializers
	for name, factory := range testSerializers {
		serializer := factory()
		serializedData[name] = make(map[string][]byte)

		for recName, rec := range records {
			data, err := serializer.Serialize(rec)
			if err != nil {
				b.Fatalf("Failed to serialize %s with %s: %v", recName, name, err)
			}
			serializedData[name][recName] = data
		}
	}

	// Benchmark deserialization
	for name, factory := range testSerializers {
		for recName := range records {
			b.Run(name+"_"+recName, func(b *testing.B) {
				serializer := factory()
				data := serializedData[name][recName]
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					var rec testRecord
					err := serializer.Deserialize(data, &rec)
					if err != nil {
						b.Fatalf("Failed to deserialize: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkSize measures and reports the serialized size for each record
func BenchmarkSize(b *testing.B) {
	records := benchmarkRecords()

	for name, factory := range testSerializers {
		serializer := factory()

		for recName, rec := range records {
			b.Run(name+"_"+recName, func(b *testing.B) {
				data, err := serializer.Serialize(rec)
				if err != nil {
					b.Fatalf("Failed to serialize: %v", err)
				}

				// Report the size as a custom metric
				b.ReportMetric(float64(len(data)), "bytes")

				for i := 0; i < b.N; i++ {
					_ = data
				}
			})
		}
	}
}

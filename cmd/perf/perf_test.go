package perf

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/ValentinKolb/dIO/lib/common"
	"github.com/ValentinKolb/dIO/lib/serializer"
	"github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/require"
)

func TestBenchmarkAndCSV(t *testing.T) {
	perfIterations = 5
	registry := metrics.NewRegistry()

	res, err := benchmark(serializer.NewBinarySerializer(), "binary", "record", registry)
	require.NoError(t, err)
	require.Greater(t, res.size, 0)
	require.EqualValues(t, 5, res.timer.Count())
	require.NotNil(t, registry.Get("binary.record.bytes"))

	path := filepath.Join(t.TempDir(), "perf.csv")
	require.NoError(t, writeResultsToCSV(path, []result{res}, common.DefaultConfig()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "binary", rows[1][0])
	require.Equal(t, "record", rows[1][1])
	require.Equal(t, "5", rows[1][11])
}

func TestShouldSkip(t *testing.T) {
	perfSkip = []string{"nested"}
	require.True(t, shouldSkip("nested"))
	require.False(t, shouldSkip("record"))
}

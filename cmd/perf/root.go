package perf

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/dIO/cmd/sample"
	"github.com/ValentinKolb/dIO/cmd/util"
	"github.com/ValentinKolb/dIO/lib/common"
	"github.com/ValentinKolb/dIO/lib/serializer"
	vm "github.com/VictoriaMetrics/metrics"
	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// PerfCmd benchmarks the serializers
	PerfCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for the dIO serializer",
		Long:    "Benchmarks the binary dIO serializer against JSON and GOB on the sample values. Besides the ns/op of a round trip it collects latency percentiles and payload sizes.",
		Args:    cobra.NoArgs,
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfIterations  = 1000
	perfSerializers = []string{"binary", "json", "gob"}
	perfSkip        = make([]string, 0)
)

func init() {
	// add flags
	key := "iterations"
	PerfCmd.Flags().Int(key, 1000, util.WrapString("Number of round trips used to collect latency percentiles"))
	key = "serializers"
	PerfCmd.Flags().String(key, "binary,json,gob", util.WrapString("Serializers to benchmark (comma separated)"))
	key = "skip"
	PerfCmd.Flags().String(key, "", util.WrapString("Samples to skip (comma separated - e.g. record,nested)"))
	key = "csv"
	PerfCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
	key = "metrics"
	PerfCmd.Flags().Bool(key, false, util.WrapString("Print the collected serialiser metrics in Prometheus text format"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	perfIterations = viper.GetInt("iterations")
	perfSerializers = strings.Split(viper.GetString("serializers"), ",")
	perfSkip = strings.Split(viper.GetString("skip"), ",")
	return nil
}

// result of one serializer and sample combination
type result struct {
	serializer string
	sample     string
	bench      testing.BenchmarkResult
	size       int
	timer      metrics.Timer
}

func run(cmd *cobra.Command, _ []string) error {
	conf, err := util.GetConfig()
	if err != nil {
		return err
	}

	fmt.Println("Performance testing tool for the dIO serializer")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(conf.String())
	fmt.Printf("Iterations: %d\n", perfIterations)
	fmt.Println()

	fmt.Println("starting tests...")

	registry := metrics.NewRegistry()
	var results []result

	for _, name := range perfSerializers {
		s, err := util.GetSerializer(name, conf)
		if err != nil {
			return err
		}
		for _, kind := range sample.Kinds {
			// data sets only have a serialiser in the binary format
			if shouldSkip(kind) || (kind == "dataset" && name != "binary") {
				continue
			}

			res, err := benchmark(s, name, kind, registry)
			if err != nil {
				return err
			}
			results = append(results, res)
			printResult(res)
		}
	}

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, conf); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	if viper.GetBool("metrics") {
		fmt.Println()
		vm.WritePrometheus(cmd.OutOrStdout(), false)
	}
	return nil
}

// benchmark measures round trips of one sample kind with s
func benchmark(s serializer.ISerializer, name, kind string, registry metrics.Registry) (result, error) {
	value, _ := sample.Build(kind)
	data, err := s.Serialize(value)
	if err != nil {
		return result{}, fmt.Errorf("(%s/%s) - error serializing: %w", name, kind, err)
	}

	res := result{
		serializer: name,
		sample:     kind,
		size:       len(data),
		timer:      metrics.GetOrRegisterTimer(name+"."+kind+".roundtrip", registry),
	}
	sizes := metrics.GetOrRegisterHistogram(name+"."+kind+".bytes", registry, metrics.NewUniformSample(1028))

	var failure error
	roundTrip := func() {
		out, err := s.Serialize(value)
		if err != nil {
			failure = err
			return
		}
		sizes.Update(int64(len(out)))
		if err := s.Deserialize(out, newTarget(kind)); err != nil {
			failure = err
		}
	}

	res.bench = testing.Benchmark(func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			roundTrip()
		}
	})

	for i := 0; i < perfIterations && failure == nil; i++ {
		res.timer.Time(roundTrip)
	}
	if failure != nil {
		return res, fmt.Errorf("(%s/%s) - error in round trip: %w", name, kind, failure)
	}
	return res, nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(kind string) bool {
	// Check if the sample is in the skip list
	for _, skip := range perfSkip {
		if kind == skip {
			return true
		}
	}
	return false
}

// newTarget returns a pointer to a zero value of the sample kind
func newTarget(kind string) any {
	switch kind {
	case "nested":
		return &sample.Nested{}
	case "dataset":
		return &sample.Measurement{}
	default:
		return &sample.Record{}
	}
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(res result) {
	test := res.serializer + "/" + res.sample
	if res.bench.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(res.bench.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)
	ps := res.timer.Percentiles([]float64{0.5, 0.99})

	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\tp50 %s\tp99 %s\t%d bytes\n",
		test, nsPerOp, time.Duration(nsPerOp), opsPerSec,
		time.Duration(ps[0]), time.Duration(ps[1]), res.size)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results []result, config common.Config) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Serializer", "Sample", "NsPerOp", "DurationPerOp", "OpsPerSec",
		"P50Ns", "P99Ns", "MaxNs", "Bytes",
		"Buffer", "SimpleStrings", "Iterations",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].serializer != results[j].serializer {
			return results[i].serializer < results[j].serializer
		}
		return results[i].sample < results[j].sample
	})

	// Write test results
	for _, res := range results {
		nsPerOp := math.Max(float64(res.bench.NsPerOp()), 1)
		opsPerSec := 1.0 / (nsPerOp / 1e9)
		ps := res.timer.Percentiles([]float64{0.5, 0.99})

		row := []string{
			res.serializer,
			res.sample,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			fmt.Sprintf("%.0f", ps[0]),
			fmt.Sprintf("%.0f", ps[1]),
			strconv.FormatInt(res.timer.Max(), 10),
			strconv.Itoa(res.size),
			string(config.Buffer),
			strconv.FormatBool(config.SimpleStrings),
			strconv.Itoa(perfIterations),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s/%s: %v", res.serializer, res.sample, err)
		}
	}

	return nil
}

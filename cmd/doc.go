// Package cmd implements the command-line interface of dIO. It provides tools to
// produce, inspect and benchmark dIO wire streams.
//
// The package is organized into several subpackages:
//
//   - sample: Writes example streams (records, nested records, data sets) to a file
//   - inspect: Parses a stream and prints its field tree with decoded leaf values
//   - perf: Benchmarks the binary serializer against JSON and GOB
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// All flags can also be set through environment variables with the DIO_ prefix
// (e.g. DIO_LOG_LEVEL=debug), .env and .env.local files are loaded on start.
//
// See dio -help for a list of all commands.
package cmd

package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/dIO/cmd/inspect"
	"github.com/ValentinKolb/dIO/cmd/perf"
	"github.com/ValentinKolb/dIO/cmd/sample"
	"github.com/ValentinKolb/dIO/cmd/util"
	"github.com/ValentinKolb/dIO/lib/wire"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "dio",
		Short: "self-describing binary object serialisation",
		Long: fmt.Sprintf(`dIO (v%s)

A reflective binary serialisation library written in Go. Values are written
as a self-describing stream of typed, named and sized fields, so streams can
be inspected and read back by types that have added or dropped fields.`, Version),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return util.BindCommandFlags(cmd)
		},
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dIO and its wire format",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dIO v%s (wire format %s %d.%d.%d)\n", Version,
				wire.ProducerName, wire.VersionMajor, wire.VersionMinor, wire.VersionMicro)
		},
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(inspect.InspectCmd)
	RootCmd.AddCommand(sample.SampleCmd)
	RootCmd.AddCommand(perf.PerfCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	util.SetupCommonFlags(RootCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package sample

import (
	"fmt"
	"os"
	"strings"

	"github.com/ValentinKolb/dIO/cmd/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// SampleCmd writes an example stream
	SampleCmd = &cobra.Command{
		Use:   "sample",
		Short: "Write an example dIO stream to a file",
		Long:  "Serialise one of the built in example values and write the stream to a file. Use `dio inspect` to look at the result.",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return util.BindCommandFlags(cmd)
		},
		RunE: run,
	}
)

func init() {
	key := "out"
	SampleCmd.Flags().String(key, "sample.dio", util.WrapString("File to write the stream to ('-' for stdout)"))
	key = "kind"
	SampleCmd.Flags().String(key, "record", util.WrapString(fmt.Sprintf("Kind of sample to write (%s)", strings.Join(Kinds, ", "))))
}

func run(cmd *cobra.Command, _ []string) error {
	conf, err := util.GetConfig()
	if err != nil {
		return err
	}

	kind := viper.GetString("kind")
	value, ok := Build(kind)
	if !ok {
		return fmt.Errorf("invalid sample kind %s. must be one of %s", kind, strings.Join(Kinds, ", "))
	}

	s, err := util.GetSerializer("binary", conf)
	if err != nil {
		return err
	}
	data, err := s.Serialize(value)
	if err != nil {
		return fmt.Errorf("failed to serialise %s sample: %w", kind, err)
	}

	out := viper.GetString("out")
	if out == "-" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	util.Logger.Infof("wrote %d bytes (%s sample, %s buffer) to %s", len(data), kind, conf.Buffer, out)
	return nil
}

package inspect

import (
	"fmt"
	"io"
	"os"

	"github.com/ValentinKolb/dIO/cmd/util"
	"github.com/spf13/cobra"
)

var (
	// InspectCmd prints the field tree of a stream
	InspectCmd = &cobra.Command{
		Use:   "inspect [file]",
		Short: "Print the field tree of a dIO stream",
		Long:  "Parse a dIO stream and print every field with its type, data position, size and decoded value. Use '-' to read from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
)

func run(cmd *cobra.Command, args []string) error {
	conf, err := util.GetConfig()
	if err != nil {
		return err
	}

	var data []byte
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read stream: %w", err)
	}

	if err := Inspect(cmd.OutOrStdout(), conf.WrapBuffer(data)); err != nil {
		return fmt.Errorf("failed to inspect %s: %w", args[0], err)
	}
	return nil
}

package util

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/dIO/lib/common"
	"github.com/ValentinKolb/dIO/lib/serializer"
	"github.com/joho/godotenv"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Logger = logger.GetLogger("cli")

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupCommonFlags adds the flags shared by all commands
func SetupCommonFlags(cmd *cobra.Command) {
	key := "log-level"
	cmd.PersistentFlags().String(key, "info", WrapString("Log level (debug, info, warn, error)"))

	key = "buffer"
	cmd.PersistentFlags().String(key, string(common.BufferKindByte), WrapString("Buffer implementation to use (byte = network byte order, fast = little-endian with bulk array copies). Streams must be read with the kind they were written with"))

	key = "simple-strings"
	cmd.PersistentFlags().Bool(key, false, WrapString("Encode strings as ISO-8859-1 instead of UTF-8"))

	key = "initial-capacity"
	cmd.PersistentFlags().Int(key, common.DefaultInitialCapacity, WrapString("Initial capacity of write buffers in bytes"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("dio")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetConfig reads the configuration from viper
func GetConfig() (common.Config, error) {
	conf := common.DefaultConfig()
	conf.LogLevel = viper.GetString("log-level")
	conf.SimpleStrings = viper.GetBool("simple-strings")
	if c := viper.GetInt("initial-capacity"); c > 0 {
		conf.InitialCapacity = c
	}

	kind, err := common.ParseBufferKind(viper.GetString("buffer"))
	if err != nil {
		return conf, err
	}
	conf.Buffer = kind
	return conf, nil
}

// GetSerializer creates a serializer by name
func GetSerializer(name string, conf common.Config) (serializer.ISerializer, error) {
	switch name {
	case "json":
		return serializer.NewJSONSerializer(), nil
	case "gob":
		return serializer.NewGOBSerializer(), nil
	case "binary":
		return serializer.NewBinarySerializerWithConfig(conf, serializer.Registry()), nil
	default:
		return nil, fmt.Errorf("invalid serializer %s", name)
	}
}

// BindCommandFlags binds a command's flags to viper and initializes the loggers
func BindCommandFlags(cmd *cobra.Command) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	conf, err := GetConfig()
	if err != nil {
		return err
	}
	return common.InitLoggers(conf)
}

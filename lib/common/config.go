package common

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/dIO/lib/buffer"
)

// --------------------------------------------------------------------------
// Buffer kinds
// --------------------------------------------------------------------------

type BufferKind string

const (
	// BufferKindByte selects buffer.ByteBuffer (network byte order)
	BufferKindByte BufferKind = "byte"
	// BufferKindFast selects buffer.FastByteBuffer (little-endian, bulk array copies)
	BufferKindFast BufferKind = "fast"
)

// ParseBufferKind validates a buffer kind name
func ParseBufferKind(s string) (BufferKind, error) {
	switch BufferKind(strings.ToLower(s)) {
	case BufferKindByte:
		return BufferKindByte, nil
	case BufferKindFast:
		return BufferKindFast, nil
	default:
		return "", fmt.Errorf("invalid buffer kind %q. must be one of byte, fast", s)
	}
}

// --------------------------------------------------------------------------
// Configuration struct
// --------------------------------------------------------------------------

const (
	DefaultInitialCapacity = 4 * 1024
	// DefaultMaxPooledCapacity is the buffer size above which pooled buffers are trimmed
	DefaultMaxPooledCapacity = 1024 * 1024
)

// Config holds the settings shared by the serializer façade and the CLI
type Config struct {
	// Logging configuration
	LogLevel string

	// Buffer settings
	Buffer            BufferKind
	InitialCapacity   int
	MaxPooledCapacity int

	// SimpleStrings enforces ISO-8859-1 string encoding instead of UTF-8
	SimpleStrings bool
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() Config {
	return Config{
		LogLevel:          "info",
		Buffer:            BufferKindByte,
		InitialCapacity:   DefaultInitialCapacity,
		MaxPooledCapacity: DefaultMaxPooledCapacity,
	}
}

// NewBuffer creates an empty write buffer of the configured kind
func (c *Config) NewBuffer() buffer.IoBuffer {
	var buf buffer.IoBuffer
	if c.Buffer == BufferKindFast {
		buf = buffer.NewFastByteBuffer(c.capacity())
	} else {
		buf = buffer.NewByteBuffer(c.capacity())
	}
	buf.SetEnforceSimpleStringEncoding(c.SimpleStrings)
	return buf
}

// WrapBuffer creates a read buffer of the configured kind on top of data (no copy)
func (c *Config) WrapBuffer(data []byte) buffer.IoBuffer {
	var buf buffer.IoBuffer
	if c.Buffer == BufferKindFast {
		buf = buffer.WrapFastByteBuffer(data)
	} else {
		buf = buffer.WrapByteBuffer(data)
	}
	buf.SetEnforceSimpleStringEncoding(c.SimpleStrings)
	return buf
}

func (c *Config) capacity() int {
	if c.InitialCapacity <= 0 {
		return DefaultInitialCapacity
	}
	return c.InitialCapacity
}

// String returns a formatted string representation of the configuration
func (c *Config) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Buffer")
	addField("Kind", string(c.Buffer))
	addField("Initial Capacity", fmt.Sprintf("%d bytes", c.capacity()))
	addField("Max Pooled Capacity", fmt.Sprintf("%d bytes", c.MaxPooledCapacity))

	addSection("Strings")
	encoding := "UTF-8"
	if c.SimpleStrings {
		encoding = "ISO-8859-1"
	}
	addField("Encoding", encoding)

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

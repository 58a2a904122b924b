package common

import (
	"bytes"
	"testing"

	"github.com/ValentinKolb/dIO/lib/buffer"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]logger.LogLevel{
		"debug":   logger.DEBUG,
		"INFO":    logger.INFO,
		"warn":    logger.WARNING,
		"warning": logger.WARNING,
		"error":   logger.ERROR,
	} {
		got, err := ParseLogLevel(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseLogLevel("verbose")
	require.Error(t, err)
}

func TestLoggerFormat(t *testing.T) {
	var out bytes.Buffer
	l := newLogger("codec", &out)

	l.Debugf("hidden %d", 1)
	require.Empty(t, out.String())

	l.Warningf("skipping final field %s", "x")
	require.Contains(t, out.String(), "WARN  | codec           | skipping final field x")

	l.SetLevel(logger.ERROR)
	out.Reset()
	l.Infof("hidden")
	require.Empty(t, out.String())
}

func TestInitLoggersRejectsInvalidLevel(t *testing.T) {
	require.Error(t, InitLoggers(Config{LogLevel: "loud"}))
}

func TestParseBufferKind(t *testing.T) {
	kind, err := ParseBufferKind("FAST")
	require.NoError(t, err)
	require.Equal(t, BufferKindFast, kind)

	_, err = ParseBufferKind("direct")
	require.Error(t, err)
}

func TestConfigBuffers(t *testing.T) {
	conf := DefaultConfig()
	conf.SimpleStrings = true

	buf := conf.NewBuffer()
	require.IsType(t, &buffer.ByteBuffer{}, buf)
	require.Equal(t, DefaultInitialCapacity, buf.Capacity())
	require.True(t, buf.IsEnforceSimpleStringEncoding())

	conf.Buffer = BufferKindFast
	require.IsType(t, &buffer.FastByteBuffer{}, conf.NewBuffer())
	wrapped := conf.WrapBuffer([]byte{1, 2, 3})
	require.IsType(t, &buffer.FastByteBuffer{}, wrapped)
	require.Equal(t, 3, wrapped.Limit())
}

func TestConfigString(t *testing.T) {
	conf := DefaultConfig()
	s := conf.String()
	require.Contains(t, s, "BUFFER")
	require.Contains(t, s, "UTF-8")
	require.Contains(t, s, "info")
}

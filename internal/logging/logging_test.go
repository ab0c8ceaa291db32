package logging

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
}

func TestNewLoggerJSONToWriter(t *testing.T) {
	var buf bytes.Buffer
	res := newLogger(Config{Level: "debug", Format: FormatJSON}, &buf)

	l := ComponentLogger(res.Logger, "matching")
	l.Debug().Msg("scored")

	assert.Contains(t, buf.String(), `"component":"matching"`)
	assert.Contains(t, buf.String(), `"message":"scored"`)
	assert.False(t, res.UsingFile)
}

func TestNewLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "circulate.log")
	res := NewLogger(Config{Level: "info", Output: OutputFile, File: path})
	t.Cleanup(func() { _ = res.Close() })

	require.True(t, res.UsingFile)
	assert.Equal(t, path, res.FilePath)
	assert.False(t, res.FallbackUsed)
}

func TestNewLoggerFileFallback(t *testing.T) {
	dir := t.TempDir()
	// A directory cannot be opened as a log file.
	res := newLogger(Config{Output: OutputFile, File: dir}, &bytes.Buffer{})

	assert.False(t, res.UsingFile)
	assert.True(t, res.FallbackUsed)
	assert.NotEmpty(t, res.FallbackReason)
	assert.NoError(t, res.Close())
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	ctx := l.WithContext(context.Background())

	FromContext(ctx).Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")

	// A context without a logger must still be safe to log against.
	FromContext(context.Background()).Info().Msg("dropped")
}

func TestTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, TraceIDFromContext(ctx))

	id := GetOrGenerateTraceID(ctx)
	_, err := ulid.Parse(id)
	require.NoError(t, err)

	ctx = ContextWithTraceID(ctx, id)
	assert.Equal(t, id, TraceIDFromContext(ctx))
	assert.Equal(t, id, GetOrGenerateTraceID(ctx))
}

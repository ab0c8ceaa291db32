// Package logging builds the zerolog loggers used across circulate and
// carries them, together with a per-invocation trace ID, on a context.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Output and format names accepted by Config.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
	OutputStderr  = "stderr"
	OutputFile    = "file"
)

// Config describes how a logger writes.
type Config struct {
	Level  string // trace, debug, info, warn, error; defaults to info
	Format string // json or console
	Output string // stderr or file
	File   string // path used when Output is file
	Caller bool
}

// Result is a constructed logger plus the file it writes to, if any.
type Result struct {
	Logger       zerolog.Logger
	FilePath     string
	UsingFile    bool
	FallbackUsed bool
	// FallbackReason explains why file output was abandoned for stderr.
	FallbackReason string

	file *os.File
}

// Close releases the log file, if one was opened.
func (r *Result) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// NewLogger builds a logger from cfg. If the log file cannot be opened the
// logger falls back to stderr and the reason is recorded on the Result.
func NewLogger(cfg Config) *Result {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg Config, stderr io.Writer) *Result {
	res := &Result{}

	var out io.Writer = stderr
	if strings.EqualFold(cfg.Output, OutputFile) && cfg.File != "" {
		f, err := openLogFile(cfg.File)
		if err != nil {
			res.FallbackUsed = true
			res.FallbackReason = err.Error()
		} else {
			out = f
			res.file = f
			res.FilePath = cfg.File
			res.UsingFile = true
		}
	}

	if strings.EqualFold(cfg.Format, FormatConsole) && !res.UsingFile {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp()
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	res.Logger = ctx.Logger()
	return res
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}

// ParseLevel parses a level name, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	if level == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// ComponentLogger returns l tagged with a component field.
func ComponentLogger(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str("component", component).Logger()
}

// FromContext returns the logger stored on ctx, or a disabled logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		l := zerolog.Nop()
		return &l
	}
	return zerolog.Ctx(ctx)
}

// PrintFallbackWarning tells the user that file logging was abandoned.
func PrintFallbackWarning(w io.Writer, reason string) {
	_, _ = fmt.Fprintf(w, "Warning: file logging unavailable (%s), logging to stderr\n", reason)
}

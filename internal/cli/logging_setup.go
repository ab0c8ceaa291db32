package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/circulate/internal/config"
	"github.com/rshade/circulate/internal/logging"
)

// effectiveLogging layers the --debug flag and the log environment variables
// over the configured logging section. --debug wins over CIRCULATE_LOG_LEVEL
// and always logs to the console.
func effectiveLogging(base config.LoggingConfig, debug bool) config.LoggingConfig {
	lc := base
	if level := os.Getenv(config.EnvLogLevel); level != "" {
		lc.Level = level
	}
	if format := os.Getenv(config.EnvLogFormat); format != "" {
		lc.Format = format
	}
	if debug {
		lc.Level = "debug"
		lc.Format = logging.FormatConsole
		lc.File = ""
	}
	return lc
}

// setupLogging installs the command logger and a trace ID on the command
// context.
func setupLogging(cmd *cobra.Command) *logging.Result {
	debug, _ := cmd.Flags().GetBool("debug")
	lc := effectiveLogging(config.GetLoggingConfig(), debug)

	if lc.File != "" {
		if err := config.EnsureLogDir(); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
		}
	}

	result := logging.NewLogger(lc.ToLoggingConfig())
	if result.FallbackUsed {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}

	traceID := logging.GetOrGenerateTraceID(cmd.Context())
	logger = logging.ComponentLogger(result.Logger, "cli").
		With().Str("trace_id", traceID).Logger()
	cmd.SetContext(logger.WithContext(logging.ContextWithTraceID(cmd.Context(), traceID)))

	logger.Info().Str("command", cmd.Name()).Msg("command started")
	return result
}

// cleanupLogging closes the log file handle.
func cleanupLogging(cmd *cobra.Command, logResult *logging.Result) error {
	logging.FromContext(cmd.Context()).Debug().Str("command", cmd.Name()).Msg("command finished")
	return logResult.Close()
}

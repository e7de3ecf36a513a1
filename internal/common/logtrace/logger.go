// Package logtrace provides logging and request-tracing utilities for the
// console client. It integrates with zerolog for structured logging and tags
// every pipeline request with a correlation ID.
package logtrace

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger initializes the global logger with Unix timestamp format.
// Output goes to stderr so it never interleaves with command output on
// stdout. The default level is warn; SNELLCTL_LOG_LEVEL overrides it.
func InitLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.WarnLevel
	if v := os.Getenv("SNELLCTL_LOG_LEVEL"); v != "" {
		if parsed, err := zerolog.ParseLevel(v); err == nil {
			level = parsed
		}
	}

	log.Logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"portfolio/internal/config"
)

// New creates the root zerolog.Logger for the process. Debug builds write
// human-readable console output; everything else writes JSON lines.
func New(cfg *config.AppConfig) zerolog.Logger {
	var out io.Writer = os.Stdout
	if cfg.Debug {
		out = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}
	return zerolog.New(out).
		With().
		Timestamp().
		Str("service", cfg.Name).
		Logger().
		Level(parseLevel(cfg.LogLevel))
}

// Component returns a child logger tagged with a component name.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

func parseLevel(raw string) zerolog.Level {
	if raw == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

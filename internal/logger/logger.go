package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New builds the process logger and installs it as the zerolog global.
// Unknown levels fall back to info; format "json" writes raw JSON lines.
func New(level, format string) zerolog.Logger {
	return NewWithWriter(os.Stdout, level, format)
}

func NewWithWriter(out io.Writer, level, format string) zerolog.Logger {
	var w io.Writer = out
	if format != "json" {
		w = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	l := zerolog.New(w).Level(parsed).With().Timestamp().Logger()
	log.Logger = l
	return l
}

// Nop discards everything. Used by tests and as the zero-config default.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

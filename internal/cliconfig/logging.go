package cliconfig

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Logger returns the human readable logger of the command.
func Logger(out io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).Level(level).With().Timestamp().Logger()
}

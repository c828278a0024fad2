// Package logging builds the zerolog loggers used by rtsim: a readable
// console writer for terminals and plain JSON lines otherwise.
package logging

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const consoleTimeFormat = "15:04:05.000"

// New returns a logger writing to w at the given level. Unknown levels are an
// error; an empty level means info.
func New(w io.Writer, level string, jsonOut bool) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	zerolog.ErrorFieldName = "err"

	out := w
	if !jsonOut {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: consoleTimeFormat}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(level string) (zerolog.Level, error) {
	s := strings.ToLower(strings.TrimSpace(level))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, errors.Wrapf(err, "log level %q", level)
	}
	return lvl, nil
}

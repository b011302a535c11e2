package logx

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger on stderr. Stdout belongs to the UCI protocol.
func New(level zerolog.Level) zerolog.Logger {
	var output = zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return fmt.Sprintf("%-20s", fmt.Sprintf("%s:%d", filepath.Base(file), line))
	}
	return zerolog.New(output).Level(level).With().Timestamp().Caller().Logger()
}

// ParseLevel falls back to info for an empty or unknown level.
func ParseLevel(s string) zerolog.Level {
	var level, err = zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return level
}

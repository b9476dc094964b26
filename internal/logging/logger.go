// Package logging builds the ambient logger.
//
// PTDUMP_LOG_LEVEL selects the level: debug, info, warn or error
// (default warn). PTDUMP_LOG_PREFIX sets the prefix (default "ptdump").
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	levelEnv  = "PTDUMP_LOG_LEVEL"
	prefixEnv = "PTDUMP_LOG_PREFIX"

	defaultPrefix = "ptdump"
)

// New creates a logger writing to w, configured from the environment.
func New(w io.Writer) *log.Logger {
	lg := log.NewWithOptions(w, log.Options{
		Level:  levelFromEnv(),
		Prefix: prefixFromEnv(),
	})
	return lg
}

// NewStderr creates a logger writing to stderr.
func NewStderr() *log.Logger {
	return New(os.Stderr)
}

func levelFromEnv() log.Level {
	switch strings.ToLower(os.Getenv(levelEnv)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.WarnLevel
	}
}

func prefixFromEnv() string {
	if p := os.Getenv(prefixEnv); p != "" {
		return p
	}
	return defaultPrefix
}

// Package logging defines the logger used across the module and builds it on top of charmbracelet/log
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// Logger is the structured logger interface. *log.Logger satisfies it.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Debugf(format string, args ...interface{})

	Info(msg interface{}, keyvals ...interface{})
	Infof(format string, args ...interface{})

	Warn(msg interface{}, keyvals ...interface{})
	Warnf(format string, args ...interface{})

	Error(msg interface{}, keyvals ...interface{})
	Errorf(format string, args ...interface{})
}

// Level a logging level
type Level = log.Level

const (
	// DebugLevel verbose level
	DebugLevel = log.DebugLevel
	// InfoLevel default level
	InfoLevel = log.InfoLevel
	// WarnLevel warnings and errors only
	WarnLevel = log.WarnLevel
	// ErrorLevel errors only
	ErrorLevel = log.ErrorLevel
)

// New creates a timestamped logger which writes into w and filters messages below the level
func New(w io.Writer, level Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// Discard returns a logger which drops every message
func Discard() Logger {
	return log.New(io.Discard)
}

// ParseLevel converts a level name (debug, info, warn, error) into a Level
func ParseLevel(name string) (Level, error) {
	return log.ParseLevel(name)
}

// Package common provides shared utilities and interfaces used across the application.
// This includes the logging interface and its slog-backed implementation.
package common

import (
	"fmt"
	"io"
	"log/slog"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const runIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// StandardLogger is a concrete implementation of the Logger interface.
// Every line is a structured slog record tagged with the run ID.
type StandardLogger struct {
	logger *slog.Logger
}

// GenerateRunID generates a short ID used to correlate the log lines of one run.
func GenerateRunID() string {
	id, err := gonanoid.Generate(runIDAlphabet, 8)
	if err != nil {
		return "run"
	}
	return id
}

// NewLoggerWithWriter creates a logger writing text records to w. Debug lines
// are only emitted when debug is true.
func NewLoggerWithWriter(w io.Writer, debug bool) *StandardLogger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &StandardLogger{
		logger: slog.New(handler).With("run", GenerateRunID()),
	}
}

// Debug logs a message only when debug mode is enabled
func (l *StandardLogger) Debug(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Info logs a message always
func (l *StandardLogger) Info(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

// Warn logs a message always
func (l *StandardLogger) Warn(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

// Error logs a message always
func (l *StandardLogger) Error(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

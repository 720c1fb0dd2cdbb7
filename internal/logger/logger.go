// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logger holds the structured logger of the commands.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger

func init() {
	Logger = logrus.New()
	Logger.SetOutput(os.Stderr)
	Logger.SetLevel(ParseLevel(os.Getenv("LOG_LEVEL")))
	Logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
}

// ParseLevel maps debug, warn and error to their levels and anything
// else to info.
func ParseLevel(s string) logrus.Level {
	switch s {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	}
	return logrus.InfoLevel
}

// SetDebug enables debug messages.
func SetDebug() { Logger.SetLevel(logrus.DebugLevel) }

// SetOutput redirects log output.
func SetOutput(w io.Writer) { Logger.SetOutput(w) }

// WithFields creates a new entry with the given fields
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Logger.WithFields(fields)
}

// WithField creates a new entry with a single field
func WithField(key string, value any) *logrus.Entry {
	return Logger.WithField(key, value)
}

// WithError creates a new entry with an error field
func WithError(err error) *logrus.Entry {
	return Logger.WithError(err)
}

// Info logs msg at info level.
func Info(msg string) { Logger.Info(msg) }

// Debug logs msg at debug level.
func Debug(msg string) { Logger.Debug(msg) }

// Warn logs msg at warning level.
func Warn(msg string) { Logger.Warn(msg) }

// Error logs msg at error level.
func Error(msg string) { Logger.Error(msg) }

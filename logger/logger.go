// Package logger provides the process-wide structured logger. Level comes
// from LOG_LEVEL; when LOG_FILE is set, output also goes to a size-rotated
// file. The valuation core never logs; only the boundary layers do.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Fields aliases logrus.Fields so callers don't import logrus directly.
type Fields = logrus.Fields

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()

	levelStr := os.Getenv("LOG_LEVEL")
	if levelStr == "" {
		levelStr = "info"
	}
	if lvl, err := logrus.ParseLevel(strings.ToLower(levelStr)); err == nil {
		l.SetLevel(lvl)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}

	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if path := os.Getenv("LOG_FILE"); path != "" {
		rotated := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     14, // days
			Compress:   true,
		}
		l.SetOutput(io.MultiWriter(os.Stdout, rotated))
	}

	return l
}

// L returns the shared logger instance.
func L() *logrus.Logger { return log }

// WithFields is a shorthand for L().WithFields.
func WithFields(f Fields) *logrus.Entry { return log.WithFields(f) }

//go:build !tinygo

package nrf24l01p

import (
	"os"

	"github.com/sirupsen/logrus"
)

func init() {
	l := logrus.New()
	l.Formatter = new(logrus.TextFormatter)
	l.Level = logrus.InfoLevel
	l.Out = os.Stderr
	globalLogger = NewLogrusLogger(l)
}

// logrusLogger adapts a logrus logger to the Logger interface.
type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger wraps l so it can be passed to SetLogger.
// Every message carries a component=nrf24l01p field.
func NewLogrusLogger(l *logrus.Logger) Logger {
	return &logrusLogger{entry: l.WithField("component", "nrf24l01p")}
}

func (l *logrusLogger) Debug(msg string) { l.entry.Debug(msg) }
func (l *logrusLogger) Info(msg string)  { l.entry.Info(msg) }
func (l *logrusLogger) Warn(msg string)  { l.entry.Warn(msg) }
func (l *logrusLogger) Error(msg string) { l.entry.Error(msg) }

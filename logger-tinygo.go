//go:build tinygo

package nrf24l01p

import (
	"io"
	"machine"
)

func init() {
	globalLogger = NewSerialLogger(machine.Serial, false)
}

// serialLogger writes level-prefixed lines straight to a serial port
// to avoid the memory overhead of the fmt package.
type serialLogger struct {
	w     io.Writer
	debug bool
}

// NewSerialLogger returns a Logger writing to w. Debug messages are dropped unless debug is set.
func NewSerialLogger(w io.Writer, debug bool) Logger {
	return &serialLogger{w: w, debug: debug}
}

func (l *serialLogger) log(level, msg string) {
	l.w.Write([]byte(level))
	l.w.Write([]byte(msg))
	l.w.Write([]byte("\r\n"))
}

func (l *serialLogger) Debug(msg string) {
	if l.debug {
		l.log("[DEBUG] ", msg)
	}
}
func (l *serialLogger) Info(msg string)  { l.log("[INFO]  ", msg) }
func (l *serialLogger) Warn(msg string)  { l.log("[WARN]  ", msg) }
func (l *serialLogger) Error(msg string) { l.log("[ERROR] ", msg) }

package log

import (
	"io"
	"os"
	"testing"
)

// TestingLogger returns a debug logger printing to stdout when tests run with
// -v, and a nop logger otherwise. It must be called from within a test.
func TestingLogger() Logger {
	return TestingLoggerWithOutput(os.Stdout)
}

// TestingLoggerWithOutput is TestingLogger printing to w.
func TestingLoggerWithOutput(w io.Writer) Logger {
	if !testing.Verbose() {
		return NewNopLogger()
	}
	return MustNewLogger(w, LogFormatPlain, LogLevelDebug)
}

// MustNewLogger is NewLogger that panics on error.
func MustNewLogger(w io.Writer, format, level string) Logger {
	logger, err := NewLogger(w, format, level)
	if err != nil {
		panic(err)
	}
	return logger
}

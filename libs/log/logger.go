// Package log is the structured logger shared by the harness packages.
package log

import (
	"io"

	kitlog "github.com/go-kit/kit/log"
)

const (
	// LogFormatPlain is human-readable text, for development and tests.
	LogFormatPlain string = "plain"
	// LogFormatText is an alias of LogFormatPlain.
	LogFormatText string = "text"
	// LogFormatJSON is one JSON object per line, for log collectors.
	LogFormatJSON string = "json"

	// Supported loging levels
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Logger is a leveled logger taking alternating key/value pairs after the
// message. Keys must be strings.
type Logger interface {
	Debug(msg string, keyVals ...interface{})
	Info(msg string, keyVals ...interface{})
	Warn(msg string, keyVals ...interface{})
	Error(msg string, keyVals ...interface{})

	With(keyVals ...interface{}) Logger
}

// NewSyncWriter returns a writer serializing concurrent writes to w, so that
// lines from the explorer supervisor and the query client never interleave.
func NewSyncWriter(w io.Writer) io.Writer {
	return kitlog.NewSyncWriter(w)
}

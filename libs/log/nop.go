package log

import (
	"github.com/rs/zerolog"
)

// NewNopLogger returns a logger discarding everything. It is the default of
// every component taking an optional logger.
func NewNopLogger() Logger {
	return &defaultLogger{
		Logger: zerolog.Nop(),
	}
}

package dem

import (
	"io"
	"log"
)

var diagLogger *log.Logger

// SetLogWriter configures the diagnostics stream for the dem package.
// Pass nil to disable it.
func SetLogWriter(diag io.Writer) {
	if diag == nil {
		diagLogger = nil
		return
	}
	diagLogger = log.New(diag, "[dem] ", log.LstdFlags|log.Lmicroseconds)
}

// diagf logs to the diag stream (decode and window diagnostics).
func diagf(format string, args ...interface{}) {
	if diagLogger != nil {
		diagLogger.Printf(format, args...)
	}
}

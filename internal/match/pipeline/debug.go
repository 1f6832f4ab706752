package pipeline

import (
	"io"
	"log"

	"github.com/banshee-data/match.report/internal/monitoring"
)

var (
	diagf       = monitoring.Component("pipeline")
	traceLogger *log.Logger
)

// SetTraceWriter enables per-frame telemetry. Pass nil to disable it.
func SetTraceWriter(w io.Writer) {
	if w == nil {
		traceLogger = nil
		return
	}
	traceLogger = log.New(w, "[pipeline] ", log.LstdFlags|log.Lmicroseconds)
}

// tracef logs to the trace stream (high-frequency frame telemetry).
func tracef(format string, args ...interface{}) {
	if traceLogger != nil {
		traceLogger.Printf(format, args...)
	}
}

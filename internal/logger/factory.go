package logger

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// NewDiagnostics creates a JSON logger for per-comparison similarity
// diagnostics. Every line carries a timestamp so runs can be replayed offline.
func NewDiagnostics(w io.Writer) *log.Logger {
	l := NewWithConfig(w, "", log.InfoLevel, false, true, log.JSONFormatter)
	l.SetTimeFormat(time.RFC3339Nano)
	return l
}

// OpenDiagnostics opens (appending) a diagnostics file. "-" means stderr.
// The returned close func is never nil.
func OpenDiagnostics(path string) (*log.Logger, func() error, error) {
	if path == "-" {
		return NewDiagnostics(os.Stderr), func() error { return nil }, nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, func() error { return nil }, err
	}
	return NewDiagnostics(file), file.Close, nil
}

package gcp

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/andywolf/ghreport/internal/security"
)

// Severity levels for structured logs
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// LogEntry is one structured log line in the Cloud Logging JSON format.
type LogEntry struct {
	Severity  Severity               `json:"severity"`
	Message   string                 `json:"message"`
	Timestamp time.Time              `json:"timestamp"`
	RunID     string                 `json:"run_id"`
	Labels    map[string]string      `json:"logging.googleapis.com/labels,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// CloudLogger writes structured JSON log lines that the Cloud Logging agent
// (or any JSON log shipper) can ingest. Messages are redacted before writing.
type CloudLogger struct {
	writer   io.Writer
	runID    string
	labels   map[string]string
	redactor *security.Redactor
	now      func() time.Time
	mu       sync.Mutex
	closed   bool
}

// CloudLoggerOption allows configuring the CloudLogger
type CloudLoggerOption func(*CloudLogger)

// WithLabels adds custom labels to all log entries
func WithLabels(labels map[string]string) CloudLoggerOption {
	return func(cl *CloudLogger) {
		for k, v := range labels {
			cl.labels[k] = v
		}
	}
}

// WithWriter sets a custom writer for log output
func WithWriter(w io.Writer) CloudLoggerOption {
	return func(cl *CloudLogger) {
		cl.writer = w
	}
}

// WithRedactor replaces the default credential redactor, e.g. with one that
// also knows the configured token.
func WithRedactor(r *security.Redactor) CloudLoggerOption {
	return func(cl *CloudLogger) {
		cl.redactor = r
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) CloudLoggerOption {
	return func(cl *CloudLogger) {
		cl.now = now
	}
}

// NewCloudLogger creates a logger that tags every entry with runID.
func NewCloudLogger(runID string, opts ...CloudLoggerOption) *CloudLogger {
	cl := &CloudLogger{
		writer: os.Stderr,
		runID:  runID,
		labels: map[string]string{
			"run_id":    runID,
			"component": "ghreport",
		},
		redactor: security.NewRedactor(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(cl)
	}

	return cl
}

// Log writes a structured log entry
func (cl *CloudLogger) Log(severity Severity, message string, fields map[string]interface{}) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.closed {
		return
	}

	entry := LogEntry{
		Severity:  severity,
		Message:   cl.redactor.Redact(message),
		Timestamp: cl.now().UTC(),
		RunID:     cl.runID,
		Labels:    cl.labels,
		Fields:    fields,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(cl.writer, `{"severity":"ERROR","message":"failed to marshal log entry: %v"}`+"\n", err)
		return
	}
	fmt.Fprintf(cl.writer, "%s\n", data)
}

// LogInfo writes an INFO level log entry
func (cl *CloudLogger) LogInfo(message string) {
	cl.Log(SeverityInfo, message, nil)
}

// LogWarning writes a WARNING level log entry
func (cl *CloudLogger) LogWarning(message string) {
	cl.Log(SeverityWarning, message, nil)
}

// LogError writes an ERROR level log entry
func (cl *CloudLogger) LogError(message string) {
	cl.Log(SeverityError, message, nil)
}

// Close flushes the writer if it supports syncing and drops later entries.
func (cl *CloudLogger) Close() error {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.closed {
		return nil
	}
	cl.closed = true

	if syncer, ok := cl.writer.(interface{ Sync() error }); ok && cl.writer != os.Stderr {
		return syncer.Sync()
	}
	return nil
}

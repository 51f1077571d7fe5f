package report

import (
	"fmt"
	"io"
	"log"
)

// DefaultDateFormat renders dates the way a US-locale short date looks, e.g. 12/31/2024.
const DefaultDateFormat = "1/2/2006"

// CloudLogger receives structured copies of progress notices.
type CloudLogger interface {
	LogInfo(message string)
	LogWarning(message string)
}

// Reporter fetches repository data through a Client and renders markdown reports.
// It holds no state between calls.
type Reporter struct {
	client      Client
	logger      *log.Logger
	cloudLogger CloudLogger
	dateFormat  string
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithLogger sets the logger used for progress notices.
func WithLogger(logger *log.Logger) Option {
	return func(r *Reporter) {
		r.logger = logger
	}
}

// WithCloudLogger also sends progress notices to a structured logger.
func WithCloudLogger(cl CloudLogger) Option {
	return func(r *Reporter) {
		r.cloudLogger = cl
	}
}

// WithDateFormat sets the Go time layout used for due dates.
func WithDateFormat(layout string) Option {
	return func(r *Reporter) {
		if layout != "" {
			r.dateFormat = layout
		}
	}
}

// New creates a Reporter that talks to the given client.
func New(client Client, opts ...Option) *Reporter {
	r := &Reporter{
		client:     client,
		logger:     log.New(io.Discard, "", 0),
		dateFormat: DefaultDateFormat,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// logInfo logs at INFO level to both local logger and cloud logger
func (r *Reporter) logInfo(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.logger.Printf("%s", msg)
	if r.cloudLogger != nil {
		r.cloudLogger.LogInfo(msg)
	}
}

// logWarning logs at WARNING level to both local logger and cloud logger
func (r *Reporter) logWarning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.logger.Printf("Warning: %s", msg)
	if r.cloudLogger != nil {
		r.cloudLogger.LogWarning(msg)
	}
}

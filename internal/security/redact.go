// Package security redacts credentials from text before it is logged.
package security

import (
	"io"
	"regexp"
)

var (
	// GitHub tokens: classic PATs, App installation/user tokens, fine-grained PATs
	githubTokenPattern = regexp.MustCompile(`(gh[opsu]_[a-zA-Z0-9]{36}|github_pat_[a-zA-Z0-9]{22}_[a-zA-Z0-9]{59})`)

	// Bearer and token authorization values
	bearerTokenPattern = regexp.MustCompile(`(?i)(bearer|token)[[:space:]]+([a-zA-Z0-9_\-\.]{16,})`)

	// PEM private keys
	privateKeyPattern = regexp.MustCompile(`(?s)-----BEGIN[[:space:]]+(?:RSA[[:space:]]+)?PRIVATE[[:space:]]+KEY-----.*?-----END[[:space:]]+(?:RSA[[:space:]]+)?PRIVATE[[:space:]]+KEY-----`)

	// JSON Web Tokens
	jwtPattern = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`)

	// Passwords in URLs
	urlPasswordPattern = regexp.MustCompile(`(?i)(https?)://[^:/@\s]+:([^@\s]+)@`)
)

// Redactor masks credentials in log messages.
type Redactor struct {
	extra []*regexp.Regexp
}

// NewRedactor creates a Redactor with the built-in credential patterns.
func NewRedactor() *Redactor {
	return &Redactor{}
}

// AddLiteral masks every occurrence of a known secret value, e.g. a token read
// from configuration. Values shorter than 8 bytes are ignored.
func (r *Redactor) AddLiteral(secret string) {
	if len(secret) < 8 {
		return
	}
	r.extra = append(r.extra, regexp.MustCompile(regexp.QuoteMeta(secret)))
}

// Redact returns message with credentials replaced by placeholders.
func (r *Redactor) Redact(message string) string {
	// Literals first: a configured token may not match any built-in shape.
	for _, pattern := range r.extra {
		message = pattern.ReplaceAllString(message, "[REDACTED]")
	}

	message = privateKeyPattern.ReplaceAllString(message, "[REDACTED-PRIVATE-KEY]")
	message = jwtPattern.ReplaceAllString(message, "[REDACTED-JWT]")
	message = githubTokenPattern.ReplaceAllString(message, "[REDACTED-GITHUB-TOKEN]")
	message = bearerTokenPattern.ReplaceAllString(message, "${1} [REDACTED]")
	message = urlPasswordPattern.ReplaceAllString(message, "${1}://[REDACTED]@")

	return message
}

// Writer returns an io.Writer that redacts each write before passing it to w. A
// log.Logger writes one whole message per call, so patterns never straddle writes.
func (r *Redactor) Writer(w io.Writer) io.Writer {
	return &redactingWriter{redactor: r, w: w}
}

type redactingWriter struct {
	redactor *Redactor
	w        io.Writer
}

func (rw *redactingWriter) Write(p []byte) (int, error) {
	if _, err := io.WriteString(rw.w, rw.redactor.Redact(string(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}

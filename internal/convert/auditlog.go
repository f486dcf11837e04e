package convert

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// AuditLog writes sectioned pre/post/mapping/summary snapshots for one
// conversion run. A nil *AuditLog is valid and discards everything, so
// callers that don't want an audit trail pass nil.
type AuditLog struct {
	w          io.Writer
	alsoStdout bool
	closer     io.Closer
}

// NewAuditLog wraps an arbitrary writer.
func NewAuditLog(w io.Writer) *AuditLog {
	return &AuditLog{w: w}
}

// OpenAuditLog opens (appending) a file-backed audit log and writes the
// start marker. With alsoStdout set, every section is mirrored to stdout.
func OpenAuditLog(path string, alsoStdout bool) (*AuditLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	l := &AuditLog{w: f, alsoStdout: alsoStdout, closer: f}
	l.writeRaw(fmt.Sprintf("\n=== Log Start: %s ===\n", time.Now().UTC().Format(time.RFC3339)))
	return l, nil
}

func (l *AuditLog) writeRaw(text string) {
	if l == nil {
		return
	}
	if l.w != nil {
		io.WriteString(l.w, text)
	}
	if l.alsoStdout {
		fmt.Print(text)
	}
}

// Section writes one titled JSON payload.
func (l *AuditLog) Section(title string, payload any) {
	if l == nil {
		return
	}
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		body = []byte(fmt.Sprintf("%q", err.Error()))
	}
	l.writeRaw(fmt.Sprintf("\n=== %s ===\n%s\n", title, body))
}

// Pre snapshots an activity before conversion.
func (l *AuditLog) Pre(path string, act any) {
	l.Section(fmt.Sprintf("PRE [%s]", path), act)
}

// Post snapshots an activity after conversion.
func (l *AuditLog) Post(path string, act any) {
	l.Section(fmt.Sprintf("POST [%s]", path), act)
}

// Mapping records a type mapping, with optional notes.
func (l *AuditLog) Mapping(path, from, to string, notes map[string]any) {
	payload := map[string]any{"from": from, "to": to}
	if len(notes) > 0 {
		payload["notes"] = notes
	}
	l.Section(fmt.Sprintf("MAPPED [%s]", path), payload)
}

// Summary writes the final conversion summary.
func (l *AuditLog) Summary(s Summary) {
	l.Section("SUMMARY", s)
}

// Close writes the end marker and releases the underlying file, if any.
func (l *AuditLog) Close() error {
	if l == nil {
		return nil
	}
	l.writeRaw(fmt.Sprintf("\n=== Log End: %s ===\n", time.Now().UTC().Format(time.RFC3339)))
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

package mcp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditFile is the audit log inside a .contagion directory.
const AuditFile = "audit.jsonl"

// AuditEntry is one MCP tool invocation. It records call metadata, never
// graph contents or team selections.
type AuditEntry struct {
	Timestamp  time.Time         `json:"timestamp"`
	Tool       string            `json:"tool"`
	DurationMs int64             `json:"duration_ms"`
	Status     string            `json:"status"` // "success" or "error"
	Error      string            `json:"error,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
}

// AuditLogger appends entries to a JSONL file. It is safe for concurrent
// use, and a nil AuditLogger is a no-op.
type AuditLogger struct {
	mu   sync.Mutex
	file *os.File
}

// NewAuditLogger opens dir/audit.jsonl for append. If the file cannot be
// opened a warning goes to stderr and nil is returned.
func NewAuditLogger(dir string) *AuditLogger {
	if err := os.MkdirAll(dir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot create audit log directory %s: %v\n", dir, err)
		return nil
	}
	path := filepath.Join(dir, AuditFile)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot open audit log %s: %v\n", path, err)
		return nil
	}
	return &AuditLogger{file: f}
}

// Log appends entry as one line.
func (a *AuditLogger) Log(entry AuditEntry) {
	if a == nil {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file == nil {
		return
	}
	_, _ = a.file.Write(data)
}

// Close closes the log file.
func (a *AuditLogger) Close() error {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	return err
}

// Parameters whose values are safe to record as given.
var auditValueParams = map[string]bool{
	"graph":      true,
	"model":      true,
	"format":     true,
	"seed":       true,
	"max_rounds": true,
	"scope":      true,
	"teams":      true,
	"nodes":      true,
}

// Parameters recorded only as present.
var auditPresenceParams = map[string]bool{
	"adjacency":   true,
	"seeds":       true,
	"infection_p": true,
	"self_weight": true,
}

// sanitizeToolParams reduces tool arguments to audit metadata. Known safe
// keys keep their value, presence-only keys become "(set)" and everything
// else is dropped. "_param_count" always holds the number of arguments.
func sanitizeToolParams(params map[string]any) map[string]string {
	if params == nil {
		return nil
	}
	out := make(map[string]string, len(params)+1)
	for key, val := range params {
		switch {
		case auditValueParams[key]:
			out[key] = fmt.Sprintf("%v", val)
		case auditPresenceParams[key]:
			out[key] = "(set)"
		}
	}
	out["_param_count"] = fmt.Sprintf("%d", len(params))
	return out
}

// auditTool records a finished tool call that started at start.
func (s *Server) auditTool(tool string, start time.Time, err error, params map[string]string) {
	entry := AuditEntry{
		Timestamp:  start,
		Tool:       tool,
		DurationMs: time.Since(start).Milliseconds(),
		Status:     "success",
		Params:     params,
	}
	if err != nil {
		entry.Status = "error"
		entry.Error = err.Error()
	}
	s.auditLogger.Log(entry)
}

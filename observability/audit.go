package observability

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/victoralfred/gowritter/safepath"
)

// AuditEvent is one line of the audit trail: a single gateway invocation
// and how it ended.
type AuditEvent struct {
	Timestamp time.Time `json:"timestamp"`
	ID        string    `json:"id"`
	Tool      string    `json:"tool"`
	Args      []string  `json:"args,omitempty"`
	Status    string    `json:"status"`
	ExitCode  int       `json:"exit_code"`
	Error     string    `json:"error,omitempty"`
	Duration  int64     `json:"duration_ms"`
}

// AuditLogger records audit events.
type AuditLogger interface {
	// Log appends one event to the trail.
	Log(ctx context.Context, event *AuditEvent) error

	// Close releases any held resources.
	Close() error
}

// AuditConfig configures the file audit logger.
type AuditConfig struct {
	// Enabled turns audit logging on.
	Enabled bool `yaml:"enabled"`

	// BasePath is the directory the audit file is confined to.
	BasePath string `yaml:"base_path"`

	// FilePath is the audit file path relative to BasePath.
	FilePath string `yaml:"file_path"`
}

// DefaultAuditConfig returns the default audit configuration.
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		Enabled:  false,
		BasePath: "/var/log",
		FilePath: "kubegate/audit.log",
	}
}

// fileAuditLogger appends JSONL events via gowritter's safepath, which
// confines writes to the configured base directory.
type fileAuditLogger struct {
	safePath *safepath.SafePath
	config   AuditConfig
	mu       sync.Mutex
}

// NewFileAuditLogger creates a file-backed audit logger.
func NewFileAuditLogger(config AuditConfig) (AuditLogger, error) {
	sp, err := safepath.New(config.BasePath)
	if err != nil {
		return nil, fmt.Errorf("creating safe path: %w", err)
	}
	return &fileAuditLogger{
		safePath: sp,
		config:   config,
	}, nil
}

// Log implements AuditLogger.
func (l *fileAuditLogger) Log(ctx context.Context, event *AuditEvent) error {
	if !l.config.Enabled {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling audit event: %w", err)
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.safePath.AppendFile(l.config.FilePath, data, 0o644); err != nil {
		return fmt.Errorf("writing audit log: %w", err)
	}
	return nil
}

// Close implements AuditLogger.
func (l *fileAuditLogger) Close() error { return nil }

// NopAuditLogger returns an audit logger that discards everything.
func NopAuditLogger() AuditLogger {
	return nopAuditLogger{}
}

type nopAuditLogger struct{}

func (nopAuditLogger) Log(context.Context, *AuditEvent) error { return nil }
func (nopAuditLogger) Close() error                           { return nil }

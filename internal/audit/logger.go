package audit

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/edvin/flowplane/internal/model"
)

const bufferSize = 1024

// Writer persists audit entries.
type Writer interface {
	Insert(ctx context.Context, e model.AuditEntry) error
}

// Logger is an async audit log writer. Record never blocks the request path;
// when the buffer is full or the logger is closed the entry is dropped with a
// warning.
type Logger struct {
	writer Writer
	logger zerolog.Logger
	ch     chan model.AuditEntry
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewLogger(writer Writer, logger zerolog.Logger) *Logger {
	l := &Logger{
		writer: writer,
		logger: logger,
		ch:     make(chan model.AuditEntry, bufferSize),
		done:   make(chan struct{}),
	}
	go l.drain()
	return l
}

func (l *Logger) drain() {
	defer close(l.done)
	for entry := range l.ch {
		// use context.Background since this is async
		if err := l.writer.Insert(context.Background(), entry); err != nil {
			l.logger.Error().Err(err).
				Str("tenant_workflow_id", entry.TenantWorkflowID).
				Str("action", entry.Action).
				Msg("failed to write workflow audit entry")
		}
	}
}

func (l *Logger) Record(entry model.AuditEntry) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		l.logger.Warn().
			Str("tenant_workflow_id", entry.TenantWorkflowID).
			Str("action", entry.Action).
			Msg("audit logger closed, dropping entry")
		return
	}
	select {
	case l.ch <- entry:
	default:
		l.logger.Warn().
			Str("tenant_workflow_id", entry.TenantWorkflowID).
			Str("action", entry.Action).
			Msg("audit log buffer full, dropping entry")
	}
}

// Close stops accepting entries and waits until the buffer is written out.
// Entries recorded after Close are dropped.
func (l *Logger) Close() {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.ch)
	}
	l.mu.Unlock()
	<-l.done
}

// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/orgsite/internal/app/store/audit"
	"github.com/dalemusser/orgsite/internal/app/system/metrics"
	"go.uber.org/zap"
)

// Destination modes, selected by the audit_log config key.
const (
	ModeAll = "all" // store + zap
	ModeDB  = "db"  // store only
	ModeLog = "log" // zap only
	ModeOff = "off"
)

// writeTimeout bounds a single background store write.
const writeTimeout = 5 * time.Second

// Writer is the persistence side of the audit log.
type Writer interface {
	Add(ctx context.Context, e audit.Entry) error
}

// Logger records privileged mutations without ever failing the caller.
//
// Log returns immediately: the store write runs on its own goroutine with a
// context detached from the request, and any error is reported to zap and
// metrics only. Losing an audit record is acceptable; blocking an admin
// action because the audit collection is unavailable is not.
type Logger struct {
	store   Writer
	zapLog  *zap.Logger
	mode    string
	metrics *metrics.Metrics

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// New creates an audit Logger. An empty mode means ModeAll.
func New(store Writer, zapLog *zap.Logger, mode string, m *metrics.Metrics) *Logger {
	if mode == "" {
		mode = ModeAll
	}
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{store: store, zapLog: zapLog, mode: mode, metrics: m}
}

// Log records that actor performed action on target. details is optional
// free text. A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, actorID, actorName, action, target, details string) {
	if l == nil || l.mode == ModeOff {
		return
	}

	now := time.Now().UTC()
	entry := audit.Entry{
		UserID:    actorID,
		UserName:  actorName,
		Action:    action,
		Target:    target,
		Details:   details,
		Timestamp: &now,
	}

	if l.mode == ModeAll || l.mode == ModeLog {
		l.logToZap(entry)
	}
	if (l.mode == ModeAll || l.mode == ModeDB) && l.store != nil {
		if !l.track() {
			l.zapLog.Warn("audit entry dropped after close", zap.String("action", entry.Action))
			return
		}
		go l.write(context.WithoutCancel(ctx), entry)
	}
}

// track registers one pending write under mu so Add never races Wait.
// It reports false once Close has been called.
func (l *Logger) track() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	l.wg.Add(1)
	return true
}

// Wait blocks until every pending write has finished. Log calls made while
// it drains block until it returns.
func (l *Logger) Wait() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.wg.Wait()
}

// Close stops accepting store writes and waits for pending ones. Called on
// shutdown before the database is disconnected.
func (l *Logger) Close() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.wg.Wait()
}

func (l *Logger) write(ctx context.Context, entry audit.Entry) {
	defer l.wg.Done()
	defer func() {
		if rec := recover(); rec != nil {
			l.zapLog.Error("audit write panicked", zap.Any("panic", rec), zap.String("action", entry.Action))
			l.metrics.AuditWrite(false)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := l.store.Add(ctx, entry); err != nil {
		l.zapLog.Error("failed to store audit entry",
			zap.Error(err),
			zap.String("action", entry.Action),
			zap.String("target", entry.Target),
			zap.String("user_id", entry.UserID),
		)
		l.metrics.AuditWrite(false)
		return
	}
	l.metrics.AuditWrite(true)
}

func (l *Logger) logToZap(e audit.Entry) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("action", e.Action),
		zap.String("target", e.Target),
		zap.String("user_id", e.UserID),
		zap.String("user_name", e.UserName),
	}
	if e.Details != "" {
		fields = append(fields, zap.String("details", e.Details))
	}
	l.zapLog.Info("audit event", fields...)
}

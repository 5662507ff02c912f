// internal/app/features/auditlog/handler.go
package auditlog

import (
	"context"

	"github.com/dalemusser/orgsite/internal/app/store/audit"
	"github.com/dalemusser/orgsite/internal/app/system/apiguard"
	"go.uber.org/zap"
)

// Reader is the read side of the audit store.
type Reader interface {
	Recent(ctx context.Context, limit int64) ([]audit.Entry, error)
	ByUser(ctx context.Context, userID string, limit int64) ([]audit.Entry, error)
}

type Handler struct {
	Guard *apiguard.Guard
	Store Reader
	Log   *zap.Logger
}

// NewHandler constructs the audit listing handler.
func NewHandler(g *apiguard.Guard, store Reader, logger *zap.Logger) *Handler {
	return &Handler{Guard: g, Store: store, Log: logger}
}

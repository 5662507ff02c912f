// Package apiguard is the authoritative check every mutating API handler
// runs before touching the store: verify the session server-side, then
// compare the verified role against the endpoint's minimum.
package apiguard

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/orgsite/internal/app/system/apierr"
	"github.com/dalemusser/orgsite/internal/app/system/auth"
	"github.com/dalemusser/orgsite/internal/app/system/authz"
	"github.com/dalemusser/orgsite/internal/app/system/metrics"
	"go.uber.org/zap"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

type Guard struct {
	Verifier auth.Verifier
	Log      *zap.Logger
	Metrics  *metrics.Metrics
}

func New(v auth.Verifier, logger *zap.Logger, m *metrics.Metrics) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{Verifier: v, Log: logger, Metrics: m}
}

// Require returns the caller's verified identity when its role meets min.
// Otherwise it writes the 401/403/500 response and returns false.
func (g *Guard) Require(w http.ResponseWriter, r *http.Request, min authz.Role) (auth.Identity, bool) {
	id, err := auth.Authorize(g.Verifier, r, min)
	if err != nil {
		g.Fail(w, r, err)
		return auth.Identity{}, false
	}
	return id, true
}

// Fail writes err as a JSON error response and counts it.
func (g *Guard) Fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := apierr.KindOf(err)
	if kind == apierr.KindUnauthenticated || kind == apierr.KindInsufficientPermission {
		g.Metrics.Denied(kind.String())
		g.Log.Info("api request denied",
			zap.String("kind", kind.String()),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path))
	}
	apierr.Write(w, g.Log, err)
}

// DecodeJSON reads a single JSON value from the request body into v.
// Malformed or oversized bodies become validation errors.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			return apierr.Validation("Request body too large")
		case errors.Is(err, io.EOF):
			return apierr.Validation("Request body is required")
		default:
			return apierr.Validation("Invalid JSON body")
		}
	}
	return nil
}

package apierr_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/orgsite/internal/app/system/apierr"
	"go.uber.org/zap"
)

func TestStatus_StructuredKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unauthenticated", apierr.Unauthenticated(""), http.StatusUnauthorized},
		{"forbidden", apierr.Forbidden(""), http.StatusForbidden},
		{"validation", apierr.Validation("bad"), http.StatusBadRequest},
		{"not found", apierr.NotFound("gone"), http.StatusNotFound},
		{"conflict", apierr.Conflict("dup"), http.StatusConflict},
		{"rate limited", apierr.RateLimited("slow down"), http.StatusTooManyRequests},
		{"internal", apierr.Internal("", errors.New("boom")), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("reorder: %w", apierr.Forbidden("")), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apierr.Status(tt.err); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStatus_LegacyMessageMarkers(t *testing.T) {
	tests := []struct {
		msg  string
		want int
	}{
		{"Insufficient role", http.StatusForbidden},
		{"no permission for this", http.StatusForbidden},
		{"not authenticated", http.StatusUnauthorized},
		{"database exploded", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			if got := apierr.Status(errors.New(tt.msg)); got != tt.want {
				t.Errorf("Status(%q) = %d, want %d", tt.msg, got, tt.want)
			}
		})
	}
}

func TestWrite_InternalHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	apierr.Write(rec, zap.NewNop(), errors.New("mongo: connection refused at 10.0.0.3"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rec.Code)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != "Internal server error" {
		t.Errorf("error message: got %q", body.Error)
	}
}

func TestWrite_ValidationMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	apierr.Write(rec, zap.NewNop(), apierr.Validation("orderedIds must be a non-empty array"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q", ct)
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] != "orderedIds must be a non-empty array" {
		t.Errorf("error message: got %q", body["error"])
	}
}

func TestKind_String(t *testing.T) {
	if got := apierr.KindInsufficientPermission.String(); got != "insufficient_permission" {
		t.Errorf("got %q", got)
	}
}

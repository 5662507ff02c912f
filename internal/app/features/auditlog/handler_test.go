package auditlog_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/orgsite/internal/app/features/auditlog"
	"github.com/dalemusser/orgsite/internal/app/store/audit"
	"github.com/dalemusser/orgsite/internal/app/system/apiguard"
	"github.com/dalemusser/orgsite/internal/app/system/authz"
	"github.com/dalemusser/orgsite/internal/testutil"
	"go.uber.org/zap"
)

type wireEntry struct {
	ID        string  `json:"id"`
	UserID    string  `json:"userId"`
	UserName  string  `json:"userName"`
	Action    string  `json:"action"`
	Target    string  `json:"target"`
	Details   string  `json:"details"`
	Timestamp *string `json:"timestamp"`
}

func newHandler(v testutil.Verifier, store *testutil.AuditStore) *auditlog.Handler {
	return auditlog.NewHandler(apiguard.New(v, nil, nil), store, zap.NewNop())
}

func add(t *testing.T, s *testutil.AuditStore, userID string, ts *time.Time) {
	t.Helper()
	if err := s.Add(context.Background(), audit.Entry{UserID: userID, UserName: "U", Action: audit.ActionCreate, Target: "team", Timestamp: ts}); err != nil {
		t.Fatalf("Add: %v", err)
	}
}

func TestList_AdminSeesNewestFirst(t *testing.T) {
	store := testutil.NewAuditStore()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		ts := base.Add(time.Duration(i) * time.Minute)
		add(t, store, "u1", &ts)
	}

	rec := testutil.NewRecorder()
	newHandler(testutil.SignedInAs(authz.RoleAdmin), store).ServeList(rec, testutil.NewRequest("GET", "/api/audit"))

	rec.AssertStatus(t, http.StatusOK)
	var got []wireEntry
	rec.DecodeJSON(t, &got)
	if len(got) != 3 {
		t.Fatalf("entries: got %d, want 3", len(got))
	}
	if got[0].Timestamp == nil || *got[0].Timestamp != "2026-03-01T10:02:00Z" {
		t.Errorf("first timestamp: got %v", got[0].Timestamp)
	}
	if got[0].ID == "" || got[0].UserID != "u1" || got[0].Action != audit.ActionCreate {
		t.Errorf("entry fields: %+v", got[0])
	}
}

func TestList_MissingTimestampIsNull(t *testing.T) {
	store := testutil.NewAuditStore()
	add(t, store, "u1", nil)

	rec := testutil.NewRecorder()
	newHandler(testutil.SignedInAs(authz.RoleSuperAdmin), store).ServeList(rec, testutil.NewRequest("GET", "/api/audit"))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"timestamp":null`)
}

func TestList_CapsAtLimit(t *testing.T) {
	store := testutil.NewAuditStore()
	for i := 0; i < auditlog.ListLimit+5; i++ {
		ts := time.Now().Add(time.Duration(i) * time.Second)
		add(t, store, "u1", &ts)
	}

	rec := testutil.NewRecorder()
	newHandler(testutil.SignedInAs(authz.RoleAdmin), store).ServeList(rec, testutil.NewRequest("GET", "/api/audit"))

	var got []wireEntry
	rec.DecodeJSON(t, &got)
	if len(got) != auditlog.ListLimit {
		t.Errorf("entries: got %d, want %d", len(got), auditlog.ListLimit)
	}
}

func TestList_FilterByUser(t *testing.T) {
	store := testutil.NewAuditStore()
	now := time.Now()
	add(t, store, "u1", &now)
	add(t, store, "u2", &now)

	rec := testutil.NewRecorder()
	newHandler(testutil.SignedInAs(authz.RoleAdmin), store).ServeList(rec, testutil.NewRequest("GET", "/api/audit?userId=u2"))

	var got []wireEntry
	rec.DecodeJSON(t, &got)
	if len(got) != 1 || got[0].UserID != "u2" {
		t.Errorf("filtered entries: %+v", got)
	}
}

func TestList_Permissions(t *testing.T) {
	tests := []struct {
		name   string
		v      testutil.Verifier
		status int
	}{
		{"signed out", testutil.SignedOut(), http.StatusUnauthorized},
		{"member", testutil.SignedInAs(authz.RoleMember), http.StatusForbidden},
		{"editor", testutil.SignedInAs(authz.RoleEditor), http.StatusForbidden},
		{"admin", testutil.SignedInAs(authz.RoleAdmin), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			newHandler(tt.v, testutil.NewAuditStore()).ServeList(rec, testutil.NewRequest("GET", "/api/audit"))
			rec.AssertStatus(t, tt.status)
		})
	}
}

func TestList_EmptyIsArray(t *testing.T) {
	rec := testutil.NewRecorder()
	newHandler(testutil.SignedInAs(authz.RoleAdmin), testutil.NewAuditStore()).ServeList(rec, testutil.NewRequest("GET", "/api/audit"))
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("body: got %q, want []", got)
	}
}

func TestList_StoreFailure(t *testing.T) {
	store := testutil.NewAuditStore().FailWith(errors.New("db down"))

	rec := testutil.NewRecorder()
	newHandler(testutil.SignedInAs(authz.RoleAdmin), store).ServeList(rec, testutil.NewRequest("GET", "/api/audit"))

	rec.AssertStatus(t, http.StatusInternalServerError)
}

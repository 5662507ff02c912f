package logout_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/orgsite/internal/app/features/logout"
	"github.com/dalemusser/orgsite/internal/app/store/audit"
	"github.com/dalemusser/orgsite/internal/app/system/apiguard"
	"github.com/dalemusser/orgsite/internal/app/system/auditlog"
	"github.com/dalemusser/orgsite/internal/app/system/auth"
	"github.com/dalemusser/orgsite/internal/domain/models"
	"github.com/dalemusser/orgsite/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*auth.SessionManager, *logout.Handler, *testutil.AuditStore, *auditlog.Logger) {
	t.Helper()
	sm, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	store := testutil.NewAuditStore()
	al := auditlog.New(store, zap.NewNop(), auditlog.ModeDB, nil)
	return sm, logout.NewHandler(apiguard.New(sm, nil, nil), sm, al, zap.NewNop()), store, al
}

func TestLogout_SignedIn(t *testing.T) {
	sm, h, store, al := setup(t)

	loginRec := testutil.NewRecorder()
	u := &models.SiteUser{ID: primitive.NewObjectID(), Name: "Ann", Role: "editor"}
	if _, err := sm.Login(loginRec, testutil.NewRequest("POST", "/api/auth/login"), u); err != nil {
		t.Fatalf("Login: %v", err)
	}

	req := testutil.NewRequest("POST", "/api/auth/logout")
	for _, c := range loginRec.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := testutil.NewRecorder()
	h.ServeLogout(rec, req)
	al.Wait()

	rec.AssertStatus(t, http.StatusOK)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			t.Errorf("cookie %s should be expired, MaxAge=%d", c.Name, c.MaxAge)
		}
	}
	entries := store.Entries()
	if len(entries) != 1 || entries[0].Action != audit.ActionLogout || entries[0].UserID != u.ID.Hex() {
		t.Errorf("audit: %+v", entries)
	}
}

func TestLogout_NoSessionStillOK(t *testing.T) {
	_, h, store, al := setup(t)

	rec := testutil.NewRecorder()
	h.ServeLogout(rec, testutil.NewRequest("POST", "/api/auth/logout"))
	al.Wait()

	rec.AssertStatus(t, http.StatusOK)
	if len(store.Entries()) != 0 {
		t.Error("no audit entry without a session")
	}
}

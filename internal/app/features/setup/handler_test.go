package setup_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/orgsite/internal/app/features/setup"
	"github.com/dalemusser/orgsite/internal/app/store/audit"
	userstore "github.com/dalemusser/orgsite/internal/app/store/users"
	"github.com/dalemusser/orgsite/internal/app/system/apiguard"
	"github.com/dalemusser/orgsite/internal/app/system/auditlog"
	"github.com/dalemusser/orgsite/internal/domain/models"
	"github.com/dalemusser/orgsite/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	userstore.BcryptCost = bcrypt.MinCost
}

func newHandler(token string) (*setup.Handler, *testutil.UserStore, *testutil.AuditStore, *auditlog.Logger) {
	store := testutil.NewUserStore()
	audits := testutil.NewAuditStore()
	al := auditlog.New(audits, zap.NewNop(), auditlog.ModeDB, nil)
	h := setup.NewHandler(apiguard.New(testutil.SignedOut(), nil, nil), store, token, al, zap.NewNop())
	return h, store, audits, al
}

func body(token string) map[string]string {
	return map[string]string{"token": token, "email": "owner@example.com", "name": "Owner", "password": "long-enough"}
}

func TestBootstrap_CreatesSuperAdmin(t *testing.T) {
	h, store, audits, al := newHandler("s3cret")

	rec := testutil.NewRecorder()
	h.ServeBootstrap(rec, testutil.NewJSONRequest("POST", "/bootstrap", body("s3cret")))
	al.Wait()

	rec.AssertStatus(t, http.StatusCreated)
	u, err := store.GetByEmail(t.Context(), "owner@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if u.Role != "super_admin" {
		t.Errorf("role: got %q, want super_admin", u.Role)
	}
	if entries := audits.Entries(); len(entries) != 1 || entries[0].Action != audit.ActionBootstrap {
		t.Errorf("audit: %+v", entries)
	}
}

func TestBootstrap_BadToken(t *testing.T) {
	h, store, _, _ := newHandler("s3cret")

	rec := testutil.NewRecorder()
	h.ServeBootstrap(rec, testutil.NewJSONRequest("POST", "/bootstrap", body("guess")))

	rec.AssertStatus(t, http.StatusForbidden)
	if n, _ := store.Count(t.Context()); n != 0 {
		t.Error("no user should be created")
	}
}

func TestBootstrap_DisabledWithoutToken(t *testing.T) {
	h, _, _, _ := newHandler("")

	rec := testutil.NewRecorder()
	h.ServeBootstrap(rec, testutil.NewJSONRequest("POST", "/bootstrap", body("")))

	rec.AssertStatus(t, http.StatusForbidden)
}

func TestBootstrap_OnlyWhileEmpty(t *testing.T) {
	h, store, _, _ := newHandler("s3cret")
	store.Add(models.SiteUser{Email: "existing@example.com", Role: "member"})

	rec := testutil.NewRecorder()
	h.ServeBootstrap(rec, testutil.NewJSONRequest("POST", "/bootstrap", body("s3cret")))

	rec.AssertStatus(t, http.StatusConflict)
}

func TestBootstrap_Validation(t *testing.T) {
	h, _, _, _ := newHandler("s3cret")

	b := body("s3cret")
	b["password"] = "short"
	rec := testutil.NewRecorder()
	h.ServeBootstrap(rec, testutil.NewJSONRequest("POST", "/bootstrap", b))
	rec.AssertStatus(t, http.StatusBadRequest)
}

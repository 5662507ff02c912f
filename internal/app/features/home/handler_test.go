package home_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/orgsite/internal/app/features/home"
	"github.com/dalemusser/orgsite/internal/testutil"
	"go.uber.org/zap"
)

func TestServeRoot(t *testing.T) {
	testutil.BootTemplates(t)
	h := home.NewHandler("Example Org", zap.NewNop())
	rec := testutil.NewRecorder()
	h.ServeRoot(rec, testutil.NewRequest("GET", "/"))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "<title>Example Org</title>")
}

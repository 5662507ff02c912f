package testutil

import (
	"sync"
	"testing"

	"github.com/dalemusser/orgsite/internal/app/resources"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

var (
	bootOnce sync.Once
	bootErr  error
)

// BootTemplates registers the shared layout and compiles every page set
// registered by the packages linked into the test binary. Feature packages
// register their pages from init, so importing the feature is enough.
func BootTemplates(t *testing.T) {
	t.Helper()
	bootOnce.Do(func() {
		resources.LoadSharedTemplates()
		eng := templates.New(false)
		bootErr = eng.Boot(zap.NewNop())
		templates.UseEngine(eng, zap.NewNop())
	})
	if bootErr != nil {
		t.Fatalf("boot templates: %v", bootErr)
	}
}

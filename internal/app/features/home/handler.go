package home

import (
	"net/http"

	"github.com/dalemusser/orgsite/internal/app/resources"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler serves the public landing page shell.
type Handler struct {
	SiteName string
	Log      *zap.Logger
}

func NewHandler(siteName string, logger *zap.Logger) *Handler {
	return &Handler{SiteName: siteName, Log: logger}
}

// ServeRoot handles GET /.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "home", resources.Page{Title: h.SiteName})
}

// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"

	"github.com/dalemusser/orgsite/internal/app/resources"
	"github.com/dalemusser/orgsite/internal/app/system/auth"
	"github.com/dalemusser/orgsite/internal/app/system/authz"
	"github.com/dalemusser/orgsite/internal/app/system/routeguard"
	"github.com/dalemusser/orgsite/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler renders the admin page shells. The route guard already filtered
// on cookies; here the session is verified before anything is shown.
type Handler struct {
	Verifier auth.Verifier
	Log      *zap.Logger
}

func NewHandler(v auth.Verifier, logger *zap.Logger) *Handler {
	return &Handler{Verifier: v, Log: logger}
}

type section struct {
	name  string
	title string
	min   authz.Role
}

var (
	dashboardSection = section{"dashboard", "Dashboard", authz.RoleEditor}
	usersSection     = section{"users", "Users", authz.RoleAdmin}
	auditSection     = section{"audit", "Audit log", authz.RoleAdmin}
)

// ServeRoot handles GET /admin.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, routeguard.DashboardPath, http.StatusSeeOther)
}

func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, dashboardSection)
}

func (h *Handler) ServeUsers(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, usersSection)
}

func (h *Handler) ServeAudit(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, auditSection)
}

// ServeContent handles GET /admin/content/{collection}.
func (h *Handler) ServeContent(w http.ResponseWriter, r *http.Request) {
	coll := chi.URLParam(r, "collection")
	if !models.IsReorderable(coll) {
		http.NotFound(w, r)
		return
	}
	h.serve(w, r, section{"content:" + coll, "Manage " + coll, authz.RoleEditor})
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, s section) {
	id, err := h.Verifier.Verify(r)
	if err != nil {
		http.Redirect(w, r, routeguard.LoginURL(r.URL.Path), http.StatusSeeOther)
		return
	}
	if !authz.CanAccessAdmin(id.Role) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if !authz.MeetsMinimum(id.Role, s.min) {
		http.Redirect(w, r, routeguard.DashboardPath, http.StatusSeeOther)
		return
	}

	data := resources.Page{
		Title:    s.title,
		Section:  s.name,
		UserName: id.Name,
		Role:     id.Role.String(),
	}
	templates.Render(w, r, "admin", data)
}

// Package robots serves the crawler policy. It advertises which paths
// should not be indexed; it enforces nothing.
package robots

import (
	"net/http"
	"strings"
)

// Disallowed paths, in the order they appear in robots.txt.
var Disallowed = []string{"/admin/", "/api/", "/login", "/bootstrap"}

// Handler serves GET /robots.txt. SiteURL, when set, adds a Sitemap line.
type Handler struct {
	SiteURL string
}

func NewHandler(siteURL string) *Handler {
	return &Handler{SiteURL: strings.TrimRight(siteURL, "/")}
}

// Body renders the policy text.
func (h *Handler) Body() string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	for _, p := range Disallowed {
		b.WriteString("Disallow: " + p + "\n")
	}
	if h.SiteURL != "" {
		b.WriteString("\nSitemap: " + h.SiteURL + "/sitemap.xml\n")
	}
	return b.String()
}

func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write([]byte(h.Body()))
}

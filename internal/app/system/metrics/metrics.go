// Package metrics exposes Prometheus counters for the admin gate: denied
// requests, best-effort side-effect failures, and cache invalidations.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "orgsite"

// Metrics owns a private registry so tests can build as many as they like.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	reg *prometheus.Registry

	denied        *prometheus.CounterVec
	auditWrites   *prometheus.CounterVec
	invalidations *prometheus.CounterVec
	redirects     *prometheus.CounterVec
}

// New builds the collectors and registers them with a fresh registry.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		denied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_denied_total",
			Help:      "API requests rejected by the server-side guard, by error kind.",
		}, []string{"kind"}),
		auditWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_writes_total",
			Help:      "Audit log writes by outcome.",
		}, []string{"outcome"}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_invalidations_total",
			Help:      "Cache namespace invalidations by namespace and outcome.",
		}, []string{"namespace", "outcome"}),
		redirects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_guard_redirects_total",
			Help:      "Admin navigations redirected by the route guard, by destination.",
		}, []string{"to"}),
	}
	m.reg.MustRegister(
		m.denied,
		m.auditWrites,
		m.invalidations,
		m.redirects,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Denied counts a request rejected with the given error kind.
func (m *Metrics) Denied(kind string) {
	if m == nil {
		return
	}
	m.denied.WithLabelValues(kind).Inc()
}

// AuditWrite counts an audit write; ok=false means the entry was lost.
func (m *Metrics) AuditWrite(ok bool) {
	if m == nil {
		return
	}
	m.auditWrites.WithLabelValues(outcome(ok)).Inc()
}

// Invalidation counts a cache invalidation for ns.
func (m *Metrics) Invalidation(ns string, ok bool) {
	if m == nil {
		return
	}
	m.invalidations.WithLabelValues(ns, outcome(ok)).Inc()
}

// Redirect counts a route guard redirect to dest ("login", "root", "dashboard").
func (m *Metrics) Redirect(dest string) {
	if m == nil {
		return
	}
	m.redirects.WithLabelValues(dest).Inc()
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

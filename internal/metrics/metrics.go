package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_http_requests_total",
		Help: "Total number of handled HTTP requests",
	}, []string{"method", "status"})
	auditEntriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "console_audit_entries_total",
		Help: "Total number of audit log entries recorded",
	})
	loginFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "console_login_failures_total",
		Help: "Total number of rejected login attempts",
	})
	snapshotFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "console_snapshot_failures_total",
		Help: "Total number of failed store snapshot writes",
	})
)

// Register registers the collectors on the given registry. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(httpRequestsTotal, auditEntriesTotal, loginFailuresTotal, snapshotFailuresTotal)
}

// IncRequest counts one handled HTTP request.
func IncRequest(method, status string) { httpRequestsTotal.WithLabelValues(method, status).Inc() }

// IncAuditEntry counts one recorded audit entry.
func IncAuditEntry() { auditEntriesTotal.Inc() }

// IncLoginFailure counts one rejected login.
func IncLoginFailure() { loginFailuresTotal.Inc() }

// IncSnapshotFailure counts one failed snapshot write.
func IncSnapshotFailure() { snapshotFailuresTotal.Inc() }

// Package prometheus renders the engine counters in the Prometheus
// text exposition format without importing the Prometheus client.
package prometheus

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/zaidhasan/authcore"
)

// Source yields counter snapshots, usually *authcore.Engine.
type Source interface {
	MetricsSnapshot() authcore.MetricsSnapshot
}

type metricDef struct {
	id   authcore.MetricID
	name string
	help string
}

var defs = []metricDef{
	{authcore.MetricAccessIssued, "authcore_access_tokens_issued_total", "Signed access tokens."},
	{authcore.MetricAuthenticateSuccess, "authcore_authenticate_success_total", "Accepted request credentials."},
	{authcore.MetricAuthenticateRejected, "authcore_authenticate_rejected_total", "Rejected request credentials."},
	{authcore.MetricSessionCreated, "authcore_sessions_created_total", "Refresh tokens created outside rotation."},
	{authcore.MetricRefreshSuccess, "authcore_refresh_success_total", "Completed refresh-token rotations."},
	{authcore.MetricRefreshFailure, "authcore_refresh_failure_total", "Rejected refresh attempts."},
	{authcore.MetricTokenBlacklisted, "authcore_tokens_blacklisted_total", "Access tokens added to the blacklist."},
	{authcore.MetricLogout, "authcore_logout_total", "Single-session logouts."},
	{authcore.MetricLogoutAll, "authcore_logout_all_total", "Log-out-everywhere operations."},
	{authcore.MetricCleanupPasses, "authcore_cleanup_passes_total", "Completed cleanup passes."},
	{authcore.MetricCleanupDeleted, "authcore_cleanup_deleted_total", "Records reclaimed by cleanup."},
}

// Exporter serves counters over HTTP.
type Exporter struct {
	source Source
}

// NewExporter returns an Exporter reading from source.
func NewExporter(source Source) *Exporter {
	return &Exporter{source: source}
}

// Render returns the exposition text for the current snapshot. Lines
// are emitted in a stable order.
func (e *Exporter) Render() string {
	snapshot := e.source.MetricsSnapshot()

	ordered := make([]metricDef, len(defs))
	copy(ordered, defs)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].name < ordered[j].name })

	var sb strings.Builder
	for _, def := range ordered {
		fmt.Fprintf(&sb, "# HELP %s %s\n", def.name, def.help)
		fmt.Fprintf(&sb, "# TYPE %s counter\n", def.name)
		fmt.Fprintf(&sb, "%s %d\n", def.name, snapshot.Counters[def.id])
	}
	return sb.String()
}

// ServeHTTP implements http.Handler for mounting at /metrics.
func (e *Exporter) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	_, _ = w.Write([]byte(e.Render()))
}

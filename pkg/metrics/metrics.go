// Package metrics exposes the Prometheus registry used by the client.
// Metrics are defined in their respective packages (client, pagination, auth)
// to keep packages independent; this package documents them and serves them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer reads back what Registry holds.
var Gatherer = prometheus.DefaultGatherer

// Handler serves every registered metric in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(Registry, promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{}))
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - ethos_requests_total{status} (Counter): Requests by HTTP status, "network_error" for transport failures
//   - ethos_request_duration_seconds{method} (Histogram): Request duration
//   - ethos_errors_total{class} (Counter): Errors by class (client, auth, rate_limit, server, network)
//
// Paging Metrics (pkg/pagination):
//   - ethos_paging_plans_total{strategy, paged} (Counter): Plans by strategy and whether a loop was needed
//   - ethos_pages_fetched_total{strategy} (Counter): Loop page fetches by strategy
//   - ethos_paging_failures_total{stage} (Counter): Failures by stage (plan, probe, loop)
//
// Auth Metrics (pkg/auth):
//   - ethos_token_refreshes_total{result} (Counter): Bearer token exchanges by result
//
// Example Prometheus Queries:
//
//   # Pages per top-level fetch
//   sum(rate(ethos_pages_fetched_total[5m])) / sum(rate(ethos_paging_plans_total{paged="true"}[5m]))
//
//   # Fraction of fetches served by the probe alone
//   sum(rate(ethos_paging_plans_total{paged="false"}[5m])) / sum(rate(ethos_paging_plans_total[5m]))
//
//   # Request Error Rate
//   rate(ethos_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(ethos_request_duration_seconds_bucket[5m]))

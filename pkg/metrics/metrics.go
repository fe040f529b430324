// Package metrics exposes the Prometheus metrics of the SWAPI client.
// Metrics are defined in their owning packages (client, pagination,
// dashboard) and registered via promauto; this package documents them and
// serves them over HTTP.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry all packages register with.
var Registry = prometheus.DefaultRegisterer

// Handler returns the HTTP handler serving the default gatherer.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - swapi_requests_total{endpoint, status} (Counter): requests by endpoint and HTTP status or error class
//   - swapi_request_duration_seconds{endpoint} (Histogram): request duration by endpoint
//   - swapi_errors_total{class} (Counter): failures by class (network, timeout, cancelled, decode)
//
// Page Metrics (pkg/pagination):
//   - swapi_page_changes_total{operation} (Counter): accepted set/next/previous changes
//   - swapi_page_rejections_total (Counter): Set calls with a page below 1
//   - swapi_page_store_errors_total{operation} (Counter): page store failures
//
// Load Metrics (pkg/dashboard):
//   - swapi_loads_total{table, outcome} (Counter): loads by table and outcome (ok, error, stale)
//   - swapi_loads_in_flight (Gauge): loads currently running
//   - swapi_load_duration_seconds{table} (Histogram): load duration including render
//
// Example Prometheus Queries:
//
//   # Load error rate
//   sum(rate(swapi_loads_total{outcome="error"}[5m])) / sum(rate(swapi_loads_total[5m]))
//
//   # P95 request latency
//   histogram_quantile(0.95, rate(swapi_request_duration_seconds_bucket[5m]))
//
//   # Decode failures
//   rate(swapi_errors_total{class="decode"}[5m])

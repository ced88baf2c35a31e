// Package metrics provides the centralized Prometheus metrics registry
// for the repository client. All metrics are defined in their
// respective packages (client, cache, importer) to maintain modularity
// and avoid circular dependencies.
//
// This package provides documentation and reference for all available
// metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the client.
// All metrics are automatically registered via promauto in their
// respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - nuxeo_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - nuxeo_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//
// Cache Metrics (pkg/cache):
//   - nuxeo_cache_hits_total (Counter): Metadata cache hits
//   - nuxeo_cache_misses_total (Counter): Metadata cache misses
//   - nuxeo_cache_errors_total{operation} (Counter): Cache operation errors
//
// Importer Metrics (pkg/importer):
//   - nuxeo_import_runs_total (Counter): Import jobs triggered
//   - nuxeo_import_status_polls_total (Counter): Importer status polls
//   - nuxeo_import_wait_seconds (Histogram): Time spent waiting for idle status
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   rate(nuxeo_cache_hits_total[5m]) /
//   (rate(nuxeo_cache_hits_total[5m]) + rate(nuxeo_cache_misses_total[5m]))
//
//   # Request Error Rate
//   sum(rate(nuxeo_requests_total{status=~"4..|5.."}[5m]))
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(nuxeo_request_duration_seconds_bucket[5m]))
//
//   # Import Wait P95
//   histogram_quantile(0.95, rate(nuxeo_import_wait_seconds_bucket[5m]))

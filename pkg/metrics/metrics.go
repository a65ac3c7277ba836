// Package metrics publishes the fetch job's Prometheus metrics.
// All metrics are defined in their respective packages (client, session,
// retriever, sink) and registered on the default registry via promauto.
//
// The job is one-shot, so there is no scrape endpoint: Push sends the
// collected metrics to a Prometheus Pushgateway at the end of a run.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// DefaultJob is the Pushgateway job label.
const DefaultJob = "ilrs_tle"

// Registry is the Prometheus registry all job metrics are registered on.
var Registry = prometheus.DefaultRegisterer

// Gatherer collects the metrics registered on Registry.
var Gatherer prometheus.Gatherer = prometheus.DefaultGatherer

// Push replaces the metrics of job on the Pushgateway at url.
func Push(ctx context.Context, url, job string) error {
	if url == "" {
		return fmt.Errorf("pushgateway url is required")
	}
	if job == "" {
		job = DefaultJob
	}

	if err := push.New(url, job).Gatherer(Gatherer).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - tle_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - tle_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - tle_errors_total{class} (Counter): Errors by class (client, server, network)
//
// Session Metrics (pkg/session):
//   - tle_logins_total{result} (Counter): Login attempts (success, rejected, error)
//
// Cycle Metrics (pkg/retriever):
//   - tle_cycles_total{result} (Counter): Fetch cycles (success, failed)
//   - tle_cycle_duration_seconds (Histogram): Fetch cycle duration
//   - tle_cycle_last_success_timestamp_seconds (Gauge): Last successful cycle
//   - tle_list_fetches_total{list, result} (Counter): Per-list outcomes (written, skipped, failed)
//
// Sink Metrics (pkg/sink):
//   - tle_sink_writes_total{backend} (Counter): Records written
//   - tle_sink_written_bytes_total{backend} (Counter): Bytes written
//   - tle_sink_errors_total{backend, operation} (Counter): Failed sink operations
//
// Example Prometheus Queries:
//
//   # Hours since the last good run
//   (time() - tle_cycle_last_success_timestamp_seconds) / 3600
//
//   # Rejected logins
//   increase(tle_logins_total{result="rejected"}[1d])

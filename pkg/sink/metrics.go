package sink

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Writes tracks successful record writes by backend
	Writes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tle_sink_writes_total",
			Help: "Total number of records written",
		},
		[]string{"backend"}, // "file", "redis"
	)

	// WrittenBytes tracks the size of written records by backend
	WrittenBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tle_sink_written_bytes_total",
			Help: "Total bytes of records written",
		},
		[]string{"backend"},
	)

	// Errors tracks sink operation errors
	Errors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tle_sink_errors_total",
			Help: "Total number of sink operation errors",
		},
		[]string{"backend", "operation"}, // "write", "get", "delete"
	)
)

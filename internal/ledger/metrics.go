package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricAppends = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_appends_total",
		Help: "Total entries appended across all ledger files",
	})

	metricWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_write_failures_total",
		Help: "Total ledger write failures reported to callers",
	})

	metricResets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_corruption_resets_total",
		Help: "Times a corrupted ledger file was reset to empty on load",
	})
)

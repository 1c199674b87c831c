package casedb

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "casedb_resolutions_total",
		Help: "Case resolutions by terminal status",
	}, []string{"status"})

	metricResolveRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "casedb_resolve_rejected_total",
		Help: "Resolve attempts rejected because the case was already resolved",
	})
)

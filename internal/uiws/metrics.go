package uiws

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricBroadcasts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uiws_broadcasts_total",
		Help: "Envelopes delivered to UI subscribers",
	})

	metricBroadcastDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uiws_broadcast_drops_total",
		Help: "Envelopes dropped because a subscriber write failed",
	})
)

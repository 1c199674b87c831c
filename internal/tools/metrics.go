package tools

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var metricInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tool_invocations_total",
	Help: "Tool invocations by tool name and result status",
}, []string{"tool", "status"})

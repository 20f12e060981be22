package dashboard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_sync_total",
		Help: "Number of dashboard synchronization attempts.",
	})

	syncFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_sync_failures_total",
		Help: "Number of failed dashboard synchronizations.",
	})
)

package identify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	outcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flora_identify_outcomes_total",
		Help: "Recognition runs by terminal status.",
	}, []string{"status"})

	latency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "flora_plantnet_request_duration_seconds",
		Help:    "Latency of Pl@ntNet identify calls.",
		Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60, 120},
	})

	apiErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flora_plantnet_errors_total",
		Help: "Non-2xx Pl@ntNet responses by status code.",
	}, []string{"code"})
)

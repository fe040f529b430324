package dashboard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for table loads.
var (
	loadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapi_loads_total",
		Help: "Total table loads by table and outcome",
	}, []string{"table", "outcome"}) // outcome: "ok", "error", "stale"

	loadsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swapi_loads_in_flight",
		Help: "Number of table loads currently in flight",
	})

	loadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "swapi_load_duration_seconds",
		Help:    "Table load duration in seconds, fetch and render included",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"table"})
)

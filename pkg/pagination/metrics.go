package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PageChanges tracks accepted page mutations by operation
	PageChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapi_page_changes_total",
			Help: "Total number of accepted page changes",
		},
		[]string{"operation"}, // "set", "next", "previous"
	)

	// PageRejections tracks Set calls with a page below 1
	PageRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "swapi_page_rejections_total",
			Help: "Total number of rejected page changes",
		},
	)

	// StoreErrors tracks page store operation errors
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapi_page_store_errors_total",
			Help: "Total number of page store operation errors",
		},
		[]string{"operation"}, // "get", "update"
	)
)

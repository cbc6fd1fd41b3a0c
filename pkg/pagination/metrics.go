package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PlansTotal counts planned requests by strategy and whether the loop ran.
	PlansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ethos_paging_plans_total",
			Help: "Total number of planned paging requests",
		},
		[]string{"strategy", "paged"},
	)

	// PagesFetched counts loop fetches (the probe is not included) by strategy.
	PagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ethos_pages_fetched_total",
			Help: "Total number of pages fetched by the paging loop",
		},
		[]string{"strategy"},
	)

	// PagingFailures counts aborted executions by stage ("probe", "plan", "loop").
	PagingFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ethos_paging_failures_total",
			Help: "Total number of paging operations that failed",
		},
		[]string{"stage"},
	)
)

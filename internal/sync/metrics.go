package sync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var recordsSynced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sync_records_total",
		Help: "How many records were written to the destination, partitioned by entity type.",
	},
	[]string{"entity"},
)

var entityFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sync_failures_total",
		Help: "How many entity sync units failed, partitioned by entity type.",
	},
	[]string{"entity"},
)

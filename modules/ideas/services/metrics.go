package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ideaWriteConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ideas",
		Subsystem: "write",
		Name:      "conflicts_total",
		Help:      "Total number of idea workflow write conflicts broken down by kind.",
	}, []string{"kind"})

	revisionCreateRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ideas",
		Subsystem: "revisions",
		Name:      "create_retries_total",
		Help:      "Total number of revision-create attempts retried after a numbering conflict.",
	})
)

func recordWriteConflict(kind string) {
	if kind == "" {
		kind = "other"
	}
	ideaWriteConflicts.WithLabelValues(kind).Inc()
}

func recordRevisionRetry() {
	revisionCreateRetries.Inc()
}

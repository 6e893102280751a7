package events

import "github.com/prometheus/client_golang/prometheus"

// emittedTotal counts outbox appends by event type. Incremented when the
// append statement succeeds; a transaction that later aborts can make this
// run slightly ahead of the committed log, which is acceptable for a
// throughput metric.
var emittedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "suits_events_emitted_total",
		Help: "Total number of outbox events appended, by event type.",
	},
	[]string{"type"},
)

func init() {
	prometheus.MustRegister(emittedTotal)
}

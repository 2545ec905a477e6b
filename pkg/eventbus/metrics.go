package eventbus

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	EventsDispatchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loyalty_events_dispatched_total",
			Help: "Count of events dispatched on the in-process bus, by topic.",
		},
		[]string{"topic"},
	)

	ListenerErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loyalty_event_listener_errors_total",
			Help: "Count of listener failures, by topic.",
		},
		[]string{"topic"},
	)
)

func init() {
	prometheus.MustRegister(EventsDispatchedTotal, ListenerErrorsTotal)
}

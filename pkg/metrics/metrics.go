// Package metrics exposes the router's prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Message directions for the routed counter.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
	DirectionEvent    = "event"
)

// Drop reasons for the dropped counter.
const (
	ReasonNoRoute       = "no_route"
	ReasonNoCorrelation = "no_correlation"
	ReasonNoSession     = "no_session"
)

// Metrics holds the router's counters.
type Metrics struct {
	Routed          *prometheus.CounterVec
	Dropped         *prometheus.CounterVec
	SessionsCreated prometheus.Counter
	SessionsCleared prometheus.Counter
	HandlerErrors   prometheus.Counter
}

// New registers the router counters on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Routed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "approuter_messages_routed_total",
			Help: "Messages successfully resolved and published, by direction.",
		}, []string{"direction"}),
		Dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "approuter_messages_dropped_total",
			Help: "Messages dropped without being published, by reason.",
		}, []string{"reason"}),
		SessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "approuter_sessions_created_total",
			Help: "Dialog sessions created.",
		}),
		SessionsCleared: factory.NewCounter(prometheus.CounterOpts{
			Name: "approuter_sessions_cleared_total",
			Help: "Dialog sessions cleared, whether by close, termination or error.",
		}),
		HandlerErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "approuter_handler_errors_total",
			Help: "Inbound handling failures that triggered error recovery.",
		}),
	}
}

package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	signalsTotal    *prometheus.CounterVec
	rejectionsTotal *prometheus.CounterVec
	ordersTotal     prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		signalsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "perpbridge_signals_total",
			Help: "Inbound signals by command and outcome.",
		}, []string{"command", "outcome"}),
		rejectionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "perpbridge_rejections_total",
			Help: "Rejected signals by reason code.",
		}, []string{"reason"}),
		ordersTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "perpbridge_orders_accepted_total",
			Help: "Signals that resulted in an accepted primary order.",
		}),
	}
}

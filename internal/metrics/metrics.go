package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	// Reconciliations counts engine runs by stage (order, customer) and result.
	Reconciliations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paytrack",
		Name:      "reconciliations_total",
		Help:      "Order and customer credit reconciliations by stage and result.",
	}, []string{"stage", "result"})

	// PaymentEvents counts recorded and removed payments.
	PaymentEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paytrack",
		Name:      "payment_events_total",
		Help:      "Payments recorded or deleted.",
	}, []string{"event"})

	StatusDrift = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "paytrack",
		Name:      "status_drift_total",
		Help:      "Listed orders whose stored status disagreed with the recomputed one.",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}

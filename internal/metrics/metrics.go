package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eventhub"

// Registry holds every eventhub collector plus the Go and process collectors.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// AuthAttempts counts register and login calls by outcome.
var AuthAttempts = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Register and login attempts by operation and result",
	},
	[]string{"operation", "result"},
)

// EventOperations counts event mutations by operation and outcome.
var EventOperations = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_operations_total",
		Help:      "Event mutations (create, update, delete, join, leave) by result",
	},
	[]string{"operation", "result"},
)

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Result turns an error into the "result" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

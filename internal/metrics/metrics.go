package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kanban-board.com/kanban-board/internal/ordering"
)

const namespace = "kanban"

var (
	reorderTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reorder_operations_total",
		Help:      "Reorder operations by entity, operation and result.",
	}, []string{"entity", "op", "result"})

	reorderFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reorder_failures_total",
		Help:      "Failed reorder operations by the last stage reached.",
	}, []string{"entity", "op", "stage"})

	reorderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "reorder_duration_seconds",
		Help:      "Time spent inside reorder transactions.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"entity", "op"})
)

// ObserveReorder records one reorder. err is the transaction's final error.
func ObserveReorder(entity, op string, started time.Time, err error) {
	reorderDuration.WithLabelValues(entity, op).Observe(time.Since(started).Seconds())

	if err == nil {
		reorderTotal.WithLabelValues(entity, op, "ok").Inc()
		return
	}
	reorderTotal.WithLabelValues(entity, op, "error").Inc()

	stage := ordering.StageLoaded
	var stageErr *ordering.StageError
	if errors.As(err, &stageErr) {
		stage = stageErr.Stage
	}
	reorderFailures.WithLabelValues(entity, op, string(stage)).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}

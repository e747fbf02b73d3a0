package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quizhub_audit_records_written_total",
		Help: "Change records written, by kind",
	}, []string{"kind"})

	publishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quizhub_audit_publish_failures_total",
		Help: "Change records that could not be published after commit",
	})

	droppedDeliveries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quizhub_audit_dropped_deliveries_total",
		Help: "Changes not delivered to a subscriber with a full buffer",
	})

	activeSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quizhub_audit_subscribers",
		Help: "Live change subscriptions of this process",
	})

	sweptRecords = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quizhub_audit_swept_records_total",
		Help: "Change records deleted by the retention sweep",
	})

	sweepFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quizhub_audit_sweep_failures_total",
		Help: "Retention sweeps that failed",
	})
)

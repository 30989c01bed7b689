package queue

import (
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	QueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "queue_depth",
			Help: "Number of tasks per queue and state",
		},
		[]string{"queue", "state"},
	)
	QueueProcessedToday = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "queue_processed_today",
			Help: "Tasks processed today grouped by status",
		},
		[]string{"queue", "status"},
	)
	QueueDLQSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "queue_dlq_size",
			Help: "Number of archived tasks",
		},
		[]string{"queue"},
	)
)

func init() {
	prometheus.MustRegister(QueueDepth, QueueProcessedToday, QueueDLQSize)
}

// QueueInspector is satisfied by *asynq.Inspector.
type QueueInspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

// ReportDepth refreshes the queue gauges from asynq's own bookkeeping.
func ReportDepth(insp QueueInspector, queues ...string) error {
	for _, name := range queues {
		info, err := insp.GetQueueInfo(name)
		if err != nil {
			return fmt.Errorf("queue info %s: %w", name, err)
		}
		QueueDepth.WithLabelValues(name, "pending").Set(float64(info.Pending))
		QueueDepth.WithLabelValues(name, "active").Set(float64(info.Active))
		QueueDepth.WithLabelValues(name, "scheduled").Set(float64(info.Scheduled))
		QueueDepth.WithLabelValues(name, "retry").Set(float64(info.Retry))
		QueueProcessedToday.WithLabelValues(name, "processed").Set(float64(info.Processed))
		QueueProcessedToday.WithLabelValues(name, "failed").Set(float64(info.Failed))
		QueueDLQSize.WithLabelValues(name).Set(float64(info.Archived))
	}
	return nil
}

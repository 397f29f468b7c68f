// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ScannerTicks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_scanner_ticks_total",
			Help: "Reminder scanner ticks by outcome.",
		},
		[]string{"outcome"},
	)

	RemindersClaimed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_claimed_total",
			Help: "Reminders claimed for dispatch.",
		},
		[]string{"kind"},
	)

	RemindersNotified = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_notified_total",
			Help: "Reminders marked notified.",
		},
		[]string{"kind"},
	)

	RemindersReleased = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_released_total",
			Help: "Reminders released after a failed dispatch.",
		},
		[]string{"kind"},
	)

	DeliveryFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_delivery_failures_total",
			Help: "Failed reminder deliveries by recipient role.",
		},
		[]string{"role"},
	)

	JobsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_jobs_started_total",
			Help: "Outbound jobs started per channel.",
		},
		[]string{"channel"},
	)

	JobsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_jobs_failed_total",
			Help: "Outbound jobs that failed after all attempts.",
		},
		[]string{"channel"},
	)

	LimiterWait = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "queue_limiter_wait_seconds",
			Help:    "Time a job waited for its channel limiter.",
			Buckets: []float64{0, 0.5, 1, 2.5, 5, 10, 30, 60, 300},
		},
		[]string{"channel"},
	)

	WSClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_clients",
			Help: "Connected websocket clients.",
		},
	)
)

// Register adds every collector to reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		ScannerTicks,
		RemindersClaimed,
		RemindersNotified,
		RemindersReleased,
		DeliveryFailures,
		JobsStarted,
		JobsFailed,
		LimiterWait,
		WSClients,
	)
}

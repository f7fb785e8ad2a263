package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Scheduler metrics

	JobPickupLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "otto",
		Name:      "job_pickup_latency_seconds",
		Help:      "Time from a job's next_run_at to it being claimed.",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})

	JobExecutionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "otto",
		Name:      "job_execution_duration_seconds",
		Help:      "Duration of a job handler invocation.",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"type", "status"})

	JobsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "otto",
		Name:      "scheduler_jobs_in_flight",
		Help:      "Number of jobs currently being executed by the scheduler's worker pool.",
	})

	JobsCompletedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "otto",
		Name:      "scheduler_jobs_completed_total",
		Help:      "Total job runs finished, by outcome.",
	}, []string{"type", "outcome"})

	SchedulerTickDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "otto",
		Name:      "scheduler_tick_duration_seconds",
		Help:      "Time taken for one scheduler claim-and-dispatch tick.",
		Buckets:   prometheus.DefBuckets,
	})

	StaleLeasesReclaimedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "otto",
		Name:      "scheduler_stale_leases_reclaimed_total",
		Help:      "Total jobs reclaimed from an expired lease during a claim cycle.",
	})

	// Outbound delivery metrics

	OutboundQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "otto",
		Name:      "outbound_queue_depth",
		Help:      "Number of outbound messages currently queued for delivery.",
	})

	OutboundDeliveryAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "otto",
		Name:      "outbound_delivery_attempts_total",
		Help:      "Total outbound delivery attempts, by outcome.",
	}, []string{"outcome"})

	OutboundDeliveryDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "otto",
		Name:      "outbound_delivery_duration_seconds",
		Help:      "Duration of one outbound transport send call.",
		Buckets:   prometheus.DefBuckets,
	})

	// Process lifecycle

	ProcessStartTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "otto",
		Name:      "process_start_time_seconds",
		Help:      "Unix timestamp when the otto process started.",
	})

	// HTTP metrics (both control planes)

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "otto",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"plane", "method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "otto",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests, by control plane.",
	}, []string{"plane", "method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		JobPickupLatency,
		JobExecutionDuration,
		JobsInFlight,
		JobsCompletedTotal,
		SchedulerTickDuration,
		StaleLeasesReclaimedTotal,
		OutboundQueueDepth,
		OutboundDeliveryAttemptsTotal,
		OutboundDeliveryDuration,
		ProcessStartTime,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{Addr: addr, Handler: mux}
}

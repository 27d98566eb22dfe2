package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	LifecycleEvents     *prometheus.CounterVec
	OperationErrors     *prometheus.CounterVec
	StandingsComputed   prometheus.Counter
	StandingsDuration   prometheus.Histogram
	SlackNotifSent      prometheus.Counter
	SlackNotifFailed    prometheus.Counter
	ActiveSubscriptions prometheus.Gauge
	StartupTimeSeconds  prometheus.Gauge
}

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		LifecycleEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shuttle_lifecycle_events_total",
			Help: "League and social lifecycle transitions, by event.",
		}, []string{"event"}),
		OperationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shuttle_operation_errors_total",
			Help: "Failed lifecycle operations, by error kind.",
		}, []string{"kind"}),
		StandingsComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shuttle_standings_computed_total",
			Help: "The total number of standings tables ranked.",
		}),
		StandingsDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shuttle_standings_duration_seconds",
			Help:    "Time to load and rank one league's standings.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shuttle_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shuttle_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		ActiveSubscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shuttle_active_standings_streams",
			Help: "Open standings streams.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shuttle_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.LifecycleEvents,
		s.OperationErrors,
		s.StandingsComputed,
		s.StandingsDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.ActiveSubscriptions,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncLifecycleEvent(event string) {
	s.LifecycleEvents.WithLabelValues(event).Inc()
}

func (s *Service) IncOperationError(kind string) {
	s.OperationErrors.WithLabelValues(kind).Inc()
}

func (s *Service) IncStandingsComputed() {
	s.StandingsComputed.Inc()
}

func (s *Service) ObserveStandingsDuration(duration float64) {
	s.StandingsDuration.Observe(duration)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetActiveSubscriptions(n int) {
	s.ActiveSubscriptions.Set(float64(n))
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}

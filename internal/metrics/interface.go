package metrics

// Metrics defines the interface for collecting application metrics.
type Metrics interface {
	IncLifecycleEvent(event string)
	IncOperationError(kind string)
	IncStandingsComputed()
	ObserveStandingsDuration(duration float64)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetActiveSubscriptions(n int)
	SetStartupTime(duration float64)
}

package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	events              map[string]int
	errors              map[string]int
	standingsComputed   int
	standingsDurations  []float64
	slackNotifSent      int
	slackNotifFailed    int
	activeSubscriptions int
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		events: make(map[string]int),
		errors: make(map[string]int),
	}
}

func (m *Mock) IncLifecycleEvent(event string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[event]++
}

func (m *Mock) IncOperationError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *Mock) IncStandingsComputed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.standingsComputed++
}

func (m *Mock) ObserveStandingsDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.standingsDurations = append(m.standingsDurations, duration)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetActiveSubscriptions(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeSubscriptions = n
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// LifecycleEvents returns how often IncLifecycleEvent was called for event.
func (m *Mock) LifecycleEvents(event string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[event]
}

// OperationErrors returns how often IncOperationError was called for kind.
func (m *Mock) OperationErrors(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[kind]
}

// StandingsComputed returns the number of times IncStandingsComputed was called.
func (m *Mock) StandingsComputed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.standingsComputed
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}

// ActiveSubscriptions returns the last value passed to SetActiveSubscriptions.
func (m *Mock) ActiveSubscriptions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeSubscriptions
}

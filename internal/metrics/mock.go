package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu               sync.Mutex
	togglesProcessed int
	goldenAnnounced  int
	goldenRevoked    int
	callResponses    int
	notifSent        int
	notifFailed      int
	toggleDurations  []float64
	startupTime      float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		toggleDurations: make([]float64, 0),
	}
}

func (m *Mock) IncTogglesProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.togglesProcessed++
}

func (m *Mock) IncGoldenAnnounced() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goldenAnnounced++
}

func (m *Mock) IncGoldenRevoked() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goldenRevoked++
}

func (m *Mock) IncCallResponses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callResponses++
}

func (m *Mock) IncNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifSent++
}

func (m *Mock) IncNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifFailed++
}

func (m *Mock) ObserveToggleDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toggleDurations = append(m.toggleDurations, seconds)
}

func (m *Mock) SetStartupTime(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = seconds
}

// TogglesProcessed returns the number of times IncTogglesProcessed was called.
func (m *Mock) TogglesProcessed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.togglesProcessed
}

// GoldenAnnounced returns the number of times IncGoldenAnnounced was called.
func (m *Mock) GoldenAnnounced() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.goldenAnnounced
}

// GoldenRevoked returns the number of times IncGoldenRevoked was called.
func (m *Mock) GoldenRevoked() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.goldenRevoked
}

// CallResponses returns the number of times IncCallResponses was called.
func (m *Mock) CallResponses() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callResponses
}

// NotifSent returns the number of times IncNotifSent was called.
func (m *Mock) NotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifSent
}

// NotifFailed returns the number of times IncNotifFailed was called.
func (m *Mock) NotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifFailed
}

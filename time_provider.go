package travelkit

import (
	"sync"
	"time"
)

// TimeProvider is the clock used for date validation and booking timestamps.
// Inject MockTimeProvider in tests so "today" is deterministic.
type TimeProvider interface {
	// Now returns the current time.
	Now() time.Time

	// Today returns midnight of the current day in the clock's location.
	Today() time.Time
}

// DefaultTimeProvider uses the system clock in the local timezone.
type DefaultTimeProvider struct{}

// NewDefaultTimeProvider creates a new DefaultTimeProvider.
func NewDefaultTimeProvider() *DefaultTimeProvider {
	return &DefaultTimeProvider{}
}

// Now returns the current system time.
func (p *DefaultTimeProvider) Now() time.Time {
	return time.Now()
}

// Today returns the start of the current local day.
func (p *DefaultTimeProvider) Today() time.Time {
	return StartOfDay(p.Now())
}

// MockTimeProvider is a TimeProvider that returns a fixed time.
type MockTimeProvider struct {
	mu        sync.RWMutex
	fixedTime time.Time
}

// NewMockTimeProvider creates a MockTimeProvider with the given fixed time.
func NewMockTimeProvider(t time.Time) *MockTimeProvider {
	return &MockTimeProvider{fixedTime: t}
}

// SetTime updates the fixed time returned by Now().
func (m *MockTimeProvider) SetTime(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fixedTime = t
}

// Now returns the fixed time.
func (m *MockTimeProvider) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fixedTime
}

// Today returns the start of the fixed day.
func (m *MockTimeProvider) Today() time.Time {
	return StartOfDay(m.Now())
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

var (
	_ TimeProvider = (*DefaultTimeProvider)(nil)
	_ TimeProvider = (*MockTimeProvider)(nil)
)

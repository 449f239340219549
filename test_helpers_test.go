package trafficlight

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

// TestObserver is a mock observer that captures every notification
type TestObserver struct {
	mutex    sync.RWMutex
	Changes  []PhaseEvent
	Consumed []ConsumedEvent
	Started  []string
	Stopped  []string
	Errors   []error
}

type ConsumedEvent struct {
	LightID  string
	Phase    Phase
	Accepted bool
}

// NewTestObserver creates a new test observer
func NewTestObserver() *TestObserver {
	return &TestObserver{}
}

func (o *TestObserver) OnPhaseChange(event PhaseEvent) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Changes = append(o.Changes, event)
}

func (o *TestObserver) OnSimulationStarted(lightID string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Started = append(o.Started, lightID)
}

func (o *TestObserver) OnSimulationStopped(lightID string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Stopped = append(o.Stopped, lightID)
}

func (o *TestObserver) OnNotificationConsumed(lightID string, phase Phase, accepted bool) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Consumed = append(o.Consumed, ConsumedEvent{LightID: lightID, Phase: phase, Accepted: accepted})
}

func (o *TestObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Errors = append(o.Errors, err)
}

func (o *TestObserver) ChangeCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Changes)
}

func (o *TestObserver) ChangesSnapshot() []PhaseEvent {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return append([]PhaseEvent(nil), o.Changes...)
}

func (o *TestObserver) ConsumedSnapshot() []ConsumedEvent {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return append([]ConsumedEvent(nil), o.Consumed...)
}

func (o *TestObserver) StartStopCounts() (int, int) {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Started), len(o.Stopped)
}

func (o *TestObserver) ErrorCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Errors)
}

// Test light builders

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// CreateFastLight creates a light whose phases last a few milliseconds
func CreateFastLight(t *testing.T, opts ...Option) *TrafficLight {
	t.Helper()
	base := []Option{
		WithIntervalRange(5*time.Millisecond, 15*time.Millisecond),
		WithSeed(1),
		WithLogger(quietLogger()),
	}
	light, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("Expected no error creating light, got: %v", err)
	}
	t.Cleanup(func() { _ = light.Close() })
	return light
}

// Test assertions and utilities

// AssertPhase checks if the light is in the expected phase
func AssertPhase(t *testing.T, light Light, expected Phase) {
	t.Helper()
	if got := light.CurrentPhase(); got != expected {
		t.Errorf("Expected phase %s, got %s", expected, got)
	}
}

// AssertAlternating checks that transitions never repeat a phase
func AssertAlternating(t *testing.T, events []PhaseEvent) {
	t.Helper()
	for i, e := range events {
		if e.From == e.To {
			t.Errorf("Transition %d repeats phase %s", i, e.To)
		}
		if i == 0 {
			if e.From != Red {
				t.Errorf("Expected first transition to leave red, got %s", e.From)
			}
			continue
		}
		if prev := events[i-1]; prev.To != e.From {
			t.Errorf("Transition %d starts from %s but previous ended in %s", i, e.From, prev.To)
		}
	}
}

// WaitUntil polls cond until it holds or the timeout passes
func WaitUntil(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}

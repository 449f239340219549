package observers

import (
	"fmt"
	"sync"

	"github.com/anggasct/trafficlight/pkg/core"
)

// ValidationObserver checks that a light's transitions alternate strictly
// and arrive in sequence
type ValidationObserver struct {
	core.BaseObserver

	last       map[string]core.PhaseEvent
	violations []string
	mutex      sync.RWMutex
}

// NewValidationObserver creates a new validation observer
func NewValidationObserver() *ValidationObserver {
	return &ValidationObserver{
		last:       make(map[string]core.PhaseEvent),
		violations: make([]string, 0),
	}
}

// OnPhaseChange validates transitions
func (o *ValidationObserver) OnPhaseChange(event core.PhaseEvent) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if !event.From.IsValid() || !event.To.IsValid() {
		o.violations = append(o.violations, fmt.Sprintf(
			"light %s: invalid phase in transition %d (%s -> %s)",
			event.LightID, event.Sequence, event.From, event.To))
	}
	if event.From == event.To {
		o.violations = append(o.violations, fmt.Sprintf(
			"light %s: transition %d repeats phase %s",
			event.LightID, event.Sequence, event.To))
	}

	if prev, ok := o.last[event.LightID]; ok {
		if event.Sequence != prev.Sequence+1 {
			o.violations = append(o.violations, fmt.Sprintf(
				"light %s: transition %d follows %d",
				event.LightID, event.Sequence, prev.Sequence))
		}
		if event.From != prev.To {
			o.violations = append(o.violations, fmt.Sprintf(
				"light %s: transition %d starts from %s but light was %s",
				event.LightID, event.Sequence, event.From, prev.To))
		}
		if event.Timestamp.Before(prev.Timestamp) {
			o.violations = append(o.violations, fmt.Sprintf(
				"light %s: transition %d is older than %d",
				event.LightID, event.Sequence, prev.Sequence))
		}
	}
	o.last[event.LightID] = event
}

// OnError records errors as violations
func (o *ValidationObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.violations = append(o.violations, fmt.Sprintf("error occurred: %v", err))
}

// GetViolations returns all validation violations
func (o *ValidationObserver) GetViolations() []string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make([]string, len(o.violations))
	copy(result, o.violations)
	return result
}

// HasViolations returns whether any violations occurred
func (o *ValidationObserver) HasViolations() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.violations) > 0
}

// Reset resets the validation state
func (o *ValidationObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.last = make(map[string]core.PhaseEvent)
	o.violations = make([]string, 0)
}

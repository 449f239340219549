package observers

import (
	"sync"
	"time"

	"github.com/anggasct/trafficlight/pkg/core"
)

// Metrics is a point-in-time copy of what a MetricsObserver has recorded
type Metrics struct {
	Transitions map[string]int
	TimeInPhase map[core.Phase]time.Duration
	Accepted    int
	Discarded   int
	Errors      int
	Starts      int
	Stops       int
	LastEvent   *core.PhaseEvent
}

// MetricsObserver collects metrics about light execution
type MetricsObserver struct {
	core.BaseObserver

	transitionCounts map[string]int
	timeInPhase      map[core.Phase]time.Duration
	accepted         int
	discarded        int
	errorCount       int
	starts           int
	stops            int
	lastEvent        *core.PhaseEvent
	mutex            sync.RWMutex
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		transitionCounts: make(map[string]int),
		timeInPhase:      make(map[core.Phase]time.Duration),
	}
}

// OnPhaseChange records transition metrics. The interval carried by the event
// is the time spent in the phase being left
func (o *MetricsObserver) OnPhaseChange(event core.PhaseEvent) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.transitionCounts[event.From.String()+"->"+event.To.String()]++
	o.timeInPhase[event.From] += event.Interval
	e := event
	o.lastEvent = &e
}

// OnSimulationStarted counts starts
func (o *MetricsObserver) OnSimulationStarted(lightID string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.starts++
}

// OnSimulationStopped counts stops
func (o *MetricsObserver) OnSimulationStopped(lightID string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.stops++
}

// OnNotificationConsumed counts accepted and discarded notifications
func (o *MetricsObserver) OnNotificationConsumed(lightID string, phase core.Phase, accepted bool) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if accepted {
		o.accepted++
	} else {
		o.discarded++
	}
}

// OnError records error metrics
func (o *MetricsObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.errorCount++
}

// GetTransitionCounts returns the number of times each transition occurred
func (o *MetricsObserver) GetTransitionCounts() map[string]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[string]int, len(o.transitionCounts))
	for transition, count := range o.transitionCounts {
		result[transition] = count
	}
	return result
}

// GetTimeInPhase returns the completed time spent in each phase
func (o *MetricsObserver) GetTimeInPhase() map[core.Phase]time.Duration {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[core.Phase]time.Duration, len(o.timeInPhase))
	for phase, d := range o.timeInPhase {
		result[phase] = d
	}
	return result
}

// GetErrorCount returns the number of errors
func (o *MetricsObserver) GetErrorCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.errorCount
}

// GetMetrics returns a snapshot of everything recorded
func (o *MetricsObserver) GetMetrics() Metrics {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	m := Metrics{
		Transitions: make(map[string]int, len(o.transitionCounts)),
		TimeInPhase: make(map[core.Phase]time.Duration, len(o.timeInPhase)),
		Accepted:    o.accepted,
		Discarded:   o.discarded,
		Errors:      o.errorCount,
		Starts:      o.starts,
		Stops:       o.stops,
	}
	for k, v := range o.transitionCounts {
		m.Transitions[k] = v
	}
	for k, v := range o.timeInPhase {
		m.TimeInPhase[k] = v
	}
	if o.lastEvent != nil {
		e := *o.lastEvent
		m.LastEvent = &e
	}
	return m
}

// Reset resets all metrics
func (o *MetricsObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.transitionCounts = make(map[string]int)
	o.timeInPhase = make(map[core.Phase]time.Duration)
	o.accepted = 0
	o.discarded = 0
	o.errorCount = 0
	o.starts = 0
	o.stops = 0
	o.lastEvent = nil
}

package trafficlight

import (
	"fmt"
	"sync"

	"github.com/anggasct/trafficlight/pkg/core"
)

// ObserverManager manages a collection of observers. It implements
// ExtendedObserver itself so a clock only ever holds one observer
type ObserverManager struct {
	observers []Observer
	mutex     sync.RWMutex
}

var _ ExtendedObserver = (*ObserverManager)(nil)

// NewObserverManager creates a new observer manager
func NewObserverManager() *ObserverManager {
	return &ObserverManager{
		observers: make([]Observer, 0),
	}
}

// AddObserver adds an observer to the manager
func (om *ObserverManager) AddObserver(observer Observer) {
	if observer == nil {
		return
	}
	om.mutex.Lock()
	defer om.mutex.Unlock()
	om.observers = append(om.observers, observer)
}

// RemoveObserver removes an observer from the manager
func (om *ObserverManager) RemoveObserver(observer Observer) {
	om.mutex.Lock()
	defer om.mutex.Unlock()
	for i, obs := range om.observers {
		if obs == observer {
			om.observers = append(om.observers[:i], om.observers[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered observers
func (om *ObserverManager) Len() int {
	om.mutex.RLock()
	defer om.mutex.RUnlock()
	return len(om.observers)
}

func (om *ObserverManager) snapshot() []Observer {
	om.mutex.RLock()
	defer om.mutex.RUnlock()
	observers := make([]Observer, len(om.observers))
	copy(observers, om.observers)
	return observers
}

// call runs fn and reports a panic to the observer's OnError, if it has one
func call(observer Observer, method string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if extObs, ok := observer.(ExtendedObserver); ok {
				func() {
					defer func() { recover() }()
					extObs.OnError(fmt.Errorf("observer panic in %s: %v", method, r))
				}()
			}
		}
	}()
	fn()
}

// OnPhaseChange notifies all observers of a phase transition
func (om *ObserverManager) OnPhaseChange(event core.PhaseEvent) {
	for _, observer := range om.snapshot() {
		call(observer, "OnPhaseChange", func() { observer.OnPhaseChange(event) })
	}
}

// OnSimulationStarted notifies all observers that a light started ticking
func (om *ObserverManager) OnSimulationStarted(lightID string) {
	for _, observer := range om.snapshot() {
		if extObs, ok := observer.(ExtendedObserver); ok {
			call(observer, "OnSimulationStarted", func() { extObs.OnSimulationStarted(lightID) })
		}
	}
}

// OnSimulationStopped notifies all observers that a light stopped ticking
func (om *ObserverManager) OnSimulationStopped(lightID string) {
	for _, observer := range om.snapshot() {
		if extObs, ok := observer.(ExtendedObserver); ok {
			call(observer, "OnSimulationStopped", func() { extObs.OnSimulationStopped(lightID) })
		}
	}
}

// OnNotificationConsumed notifies all observers that a waiter took a phase off the queue
func (om *ObserverManager) OnNotificationConsumed(lightID string, phase core.Phase, accepted bool) {
	for _, observer := range om.snapshot() {
		if extObs, ok := observer.(ExtendedObserver); ok {
			call(observer, "OnNotificationConsumed", func() { extObs.OnNotificationConsumed(lightID, phase, accepted) })
		}
	}
}

// OnError notifies all observers of errors
func (om *ObserverManager) OnError(err error) {
	for _, observer := range om.snapshot() {
		if extObs, ok := observer.(ExtendedObserver); ok {
			func() {
				defer func() { recover() }()
				extObs.OnError(err)
			}()
		}
	}
}

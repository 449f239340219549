package core

// Observer is notified of every phase transition
type Observer interface {
	// OnPhaseChange is called on the clock goroutine after the new phase
	// has been stored and published to the queue
	OnPhaseChange(event PhaseEvent)
}

// ExtendedObserver provides additional optional observation methods
type ExtendedObserver interface {
	Observer

	// OnSimulationStarted is called when a light starts ticking
	OnSimulationStarted(lightID string)

	// OnSimulationStopped is called after the clock goroutine has exited
	OnSimulationStopped(lightID string)

	// OnNotificationConsumed is called when a waiter takes a phase off the queue.
	// accepted is false when the waiter discarded it and kept waiting
	OnNotificationConsumed(lightID string, phase Phase, accepted bool)

	// OnError is called when an error occurs during processing
	OnError(err error)
}

// BaseObserver provides a default implementation with no-op methods
type BaseObserver struct{}

// OnPhaseChange implements Observer
func (o *BaseObserver) OnPhaseChange(event PhaseEvent) {}

// OnSimulationStarted implements ExtendedObserver
func (o *BaseObserver) OnSimulationStarted(lightID string) {}

// OnSimulationStopped implements ExtendedObserver
func (o *BaseObserver) OnSimulationStopped(lightID string) {}

// OnNotificationConsumed implements ExtendedObserver
func (o *BaseObserver) OnNotificationConsumed(lightID string, phase Phase, accepted bool) {}

// OnError implements ExtendedObserver
func (o *BaseObserver) OnError(err error) {}

// Package trafficlight provides a two-phase traffic light that ticks on its
// own and lets any number of goroutines block until it turns green
package trafficlight

import (
	"github.com/anggasct/trafficlight/pkg/clock"
	"github.com/anggasct/trafficlight/pkg/core"
	"github.com/anggasct/trafficlight/pkg/observers"
	"github.com/anggasct/trafficlight/pkg/queue"
)

// Core types
type (
	// Phase is the two-valued state of a light
	Phase = core.Phase

	// PhaseEvent describes one phase transition
	PhaseEvent = core.PhaseEvent

	// Observer is notified of every phase transition
	Observer = core.Observer

	// ExtendedObserver adds lifecycle, waiter and error notifications
	ExtendedObserver = core.ExtendedObserver

	// BaseObserver provides no-op observer methods for embedding
	BaseObserver = core.BaseObserver

	// PhaseQueue is the hand-off queue between a light's clock and its waiters
	PhaseQueue = queue.BlockingQueue[core.Phase]

	// QueueOrder is the removal policy of a PhaseQueue
	QueueOrder = queue.Order

	// IntervalFunc returns how long the next phase lasts
	IntervalFunc = clock.IntervalFunc
)

// Re-export observer types
type (
	// LoggingObserver logs light events through logrus
	LoggingObserver = observers.LoggingObserver

	// MetricsObserver collects metrics about light execution
	MetricsObserver = observers.MetricsObserver

	// Metrics is a snapshot taken from a MetricsObserver
	Metrics = observers.Metrics

	// ValidationObserver checks that transitions alternate strictly
	ValidationObserver = observers.ValidationObserver
)

// Re-export constants
const (
	// Red is the initial phase
	Red = core.Red

	// Green lets waiters proceed
	Green = core.Green

	// FIFO hands out the oldest notification first
	FIFO = queue.FIFO

	// LIFO hands out the newest notification first
	LIFO = queue.LIFO

	// DefaultMinInterval is the shortest default phase
	DefaultMinInterval = clock.DefaultMinInterval

	// DefaultMaxInterval is the longest default phase
	DefaultMaxInterval = clock.DefaultMaxInterval
)

// Re-export functions
var (
	// ParsePhase converts "red" or "green" into a Phase
	ParsePhase = core.ParsePhase

	// NewPhaseEvent creates a transition event
	NewPhaseEvent = core.NewPhaseEvent

	// UniformInterval draws whole milliseconds from an inclusive range
	UniformInterval = clock.UniformInterval

	// FixedInterval always returns the same duration
	FixedInterval = clock.FixedInterval

	// NewLoggingObserver creates a logging observer with default settings
	NewLoggingObserver = observers.NewDefaultLoggingObserver

	// NewCustomLoggingObserver creates a logging observer with custom settings
	NewCustomLoggingObserver = observers.NewLoggingObserver

	// NewMetricsObserver creates a new metrics observer
	NewMetricsObserver = observers.NewMetricsObserver

	// NewValidationObserver creates a new validation observer
	NewValidationObserver = observers.NewValidationObserver
)

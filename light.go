package trafficlight

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/anggasct/trafficlight/pkg/clock"
	"github.com/anggasct/trafficlight/pkg/queue"
)

// Light is the surface a light offers to intersections and vehicles
type Light interface {
	ID() string

	Simulate() error
	Stop() error

	CurrentPhase() Phase
	SetCurrentPhase(phase Phase)

	WaitForGreen()
	WaitForGreenContext(ctx context.Context) error

	AddObserver(observer Observer)
	RemoveObserver(observer Observer)
}

// LightState represents the lifecycle stage of a light
type LightState int

const (
	// Light is constructed but not ticking
	LightStateIdle LightState = iota
	// Light's clock goroutine is running
	LightStateSimulating
	// Light has been stopped and its clock goroutine has been joined
	LightStateStopped
)

func (s LightState) String() string {
	switch s {
	case LightStateIdle:
		return "idle"
	case LightStateSimulating:
		return "simulating"
	case LightStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// TrafficLight is a two-phase light that toggles itself on a randomized timer
// once Simulate is called. Any number of goroutines may wait for green;
// each phase notification is delivered to exactly one of them
type TrafficLight struct {
	id         string
	queue      *queue.BlockingQueue[Phase]
	clock      *clock.PhaseClock
	observers  *ObserverManager
	log        *logrus.Entry
	waitPacing time.Duration

	mutex  sync.Mutex
	state  LightState
	cancel context.CancelFunc
	group  *errgroup.Group
	done   chan struct{}
}

var _ Light = (*TrafficLight)(nil)

// New creates a red, unstarted light with an empty notification queue
func New(opts ...Option) (*TrafficLight, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	id := cfg.id
	if id == "" {
		id = uuid.NewString()
	}

	l := &TrafficLight{
		id:         id,
		queue:      queue.New[Phase](queue.WithOrder(cfg.order)),
		observers:  NewObserverManager(),
		log:        cfg.logger.WithField("light_id", id),
		waitPacing: cfg.waitPacing,
		done:       make(chan struct{}),
	}
	for _, o := range cfg.observers {
		l.observers.AddObserver(o)
	}

	l.clock = clock.New(l.queue,
		clock.WithIntervalFunc(cfg.intervalFunc),
		clock.WithPollInterval(cfg.pollInterval),
		clock.WithObserver(l.observers),
		clock.WithLogger(l.log.WithField("component", "clock")),
		clock.WithLightID(id),
	)
	return l, nil
}

// ID returns the light identifier
func (l *TrafficLight) ID() string {
	return l.id
}

// Simulate starts the clock goroutine. It can be called once; later calls
// return ErrAlreadySimulating, or ErrStopped after Stop
func (l *TrafficLight) Simulate() error {
	l.mutex.Lock()
	switch l.state {
	case LightStateSimulating:
		l.mutex.Unlock()
		return ErrAlreadySimulating
	case LightStateStopped:
		l.mutex.Unlock()
		return ErrStopped
	}

	// The clock is held until observers have seen the start, so no
	// OnPhaseChange can precede OnSimulationStarted
	started := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		<-started
		return l.clock.Run(ctx)
	})
	l.cancel = cancel
	l.group = group
	l.state = LightStateSimulating
	l.mutex.Unlock()

	l.log.Info("simulation started")
	l.observers.OnSimulationStarted(l.id)
	close(started)
	return nil
}

// Stop cancels the clock goroutine and waits for it to exit. Waiters blocked
// in WaitForGreenContext return ErrStopped; WaitForGreen keeps blocking
func (l *TrafficLight) Stop() error {
	l.mutex.Lock()
	switch l.state {
	case LightStateIdle:
		l.mutex.Unlock()
		return NewLightError(ErrCodeNotSimulating, "Stop", "light is not simulating")
	case LightStateStopped:
		l.mutex.Unlock()
		return NewLightError(ErrCodeStopped, "Stop", "light has been stopped")
	}
	l.state = LightStateStopped
	cancel, group := l.cancel, l.group
	close(l.done)
	l.mutex.Unlock()

	cancel()
	err := group.Wait()
	if err != nil {
		l.observers.OnError(err)
	}

	l.log.WithField("transitions", l.clock.Transitions()).Info("simulation stopped")
	l.observers.OnSimulationStopped(l.id)
	return err
}

// Close stops the light if it is simulating
func (l *TrafficLight) Close() error {
	if err := l.Stop(); err != nil && !errors.Is(err, ErrNotSimulating) && !errors.Is(err, ErrStopped) {
		return err
	}
	return nil
}

// State returns the lifecycle stage
func (l *TrafficLight) State() LightState {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.state
}

// IsSimulating reports whether the clock goroutine is running
func (l *TrafficLight) IsSimulating() bool {
	return l.State() == LightStateSimulating
}

// CurrentPhase returns the current phase. It never blocks
func (l *TrafficLight) CurrentPhase() Phase {
	return l.clock.CurrentPhase()
}

// SetCurrentPhase overwrites the current phase. The clock toggles from
// whatever value it finds, and nothing is published to waiters. Values other
// than Red and Green leave the phase unchanged and are reported to observers
// through OnError
func (l *TrafficLight) SetCurrentPhase(phase Phase) {
	if l.clock.SetCurrentPhase(phase) {
		return
	}
	err := NewLightError(ErrCodeInvalidPhase, "SetCurrentPhase", fmt.Sprintf("%s is not a light phase", phase))
	l.log.WithError(err).Warn("phase not set")
	l.observers.OnError(err)
}

// Transitions returns how many times the light has changed phase
func (l *TrafficLight) Transitions() uint64 {
	return l.clock.Transitions()
}

// Queue returns the notification queue shared by the clock and every waiter
func (l *TrafficLight) Queue() *PhaseQueue {
	return l.queue
}

// WaitForGreen blocks until this caller receives a green notification.
// Red notifications it receives are discarded. There is no timeout: if the
// light is never started, or is stopped first, WaitForGreen never returns
func (l *TrafficLight) WaitForGreen() {
	for {
		if l.waitPacing > 0 {
			time.Sleep(l.waitPacing)
		}
		if l.consume(l.queue.Receive()) {
			return
		}
	}
}

// WaitForGreenContext is WaitForGreen bounded by ctx and by the light's
// lifetime. It returns a *TimeoutError when the ctx deadline passes,
// ctx.Err() when ctx is cancelled, and ErrStopped when the light is stopped
func (l *TrafficLight) WaitForGreenContext(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-l.done:
		return errWaitStopped
	default:
	}

	start := time.Now()
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-l.done:
			cancel()
		case <-waitCtx.Done():
		}
	}()

	for {
		if err := l.pace(waitCtx); err != nil {
			return l.waitError(ctx, start, err)
		}
		phase, err := l.queue.ReceiveContext(waitCtx)
		if err != nil {
			return l.waitError(ctx, start, err)
		}
		if l.consume(phase) {
			return nil
		}
	}
}

// AddObserver registers an observer
func (l *TrafficLight) AddObserver(observer Observer) {
	l.observers.AddObserver(observer)
}

// RemoveObserver unregisters an observer
func (l *TrafficLight) RemoveObserver(observer Observer) {
	l.observers.RemoveObserver(observer)
}

func (l *TrafficLight) consume(phase Phase) bool {
	accepted := phase == Green
	l.observers.OnNotificationConsumed(l.id, phase, accepted)
	return accepted
}

func (l *TrafficLight) pace(ctx context.Context) error {
	if l.waitPacing <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(l.waitPacing)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (l *TrafficLight) waitError(parent context.Context, start time.Time, err error) error {
	if perr := parent.Err(); perr != nil {
		if errors.Is(perr, context.DeadlineExceeded) {
			var timeout time.Duration
			if deadline, ok := parent.Deadline(); ok {
				timeout = deadline.Sub(start)
			}
			return NewTimeoutError("WaitForGreen", timeout)
		}
		return perr
	}
	select {
	case <-l.done:
		return errWaitStopped
	default:
	}
	return err
}

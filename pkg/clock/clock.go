// Package clock drives the timed phase transitions of a light
package clock

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/lestrrat-go/option"
	"github.com/sirupsen/logrus"

	"github.com/anggasct/trafficlight/pkg/core"
	"github.com/anggasct/trafficlight/pkg/queue"
)

type (
	// Option configures a PhaseClock
	Option struct {
		option.Interface
	}
	identOptionInterval struct{}
	identOptionPoll     struct{}
	identOptionObserver struct{}
	identOptionLogger   struct{}
	identOptionLightID  struct{}
)

// WithIntervalFunc sets the source of phase durations
func WithIntervalFunc(fn IntervalFunc) Option {
	return Option{option.New(identOptionInterval{}, fn)}
}

// WithPollInterval makes the clock check elapsed time every d instead of
// sleeping on a single timer until the phase ends
func WithPollInterval(d time.Duration) Option {
	return Option{option.New(identOptionPoll{}, d)}
}

// WithObserver receives a PhaseEvent for every transition
func WithObserver(o core.Observer) Option {
	return Option{option.New(identOptionObserver{}, o)}
}

// WithLogger sets the log entry used by the clock goroutine
func WithLogger(l *logrus.Entry) Option {
	return Option{option.New(identOptionLogger{}, l)}
}

// WithLightID tags events and log lines with the owning light
func WithLightID(id string) Option {
	return Option{option.New(identOptionLightID{}, id)}
}

// PhaseClock owns the current phase and toggles it after randomly drawn
// intervals, publishing every new phase to a queue
type PhaseClock struct {
	phase       atomic.Int32
	transitions atomic.Uint64

	queue    *queue.BlockingQueue[core.Phase]
	next     IntervalFunc
	poll     time.Duration
	observer core.Observer
	log      *logrus.Entry
	lightID  string
}

// New creates a clock in the Red phase publishing to q
func New(q *queue.BlockingQueue[core.Phase], opts ...Option) *PhaseClock {
	c := &PhaseClock{
		queue: q,
		log:   logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		switch opt.Ident() {
		case identOptionInterval{}:
			c.next = opt.Value().(IntervalFunc)
		case identOptionPoll{}:
			c.poll = opt.Value().(time.Duration)
		case identOptionObserver{}:
			c.observer = opt.Value().(core.Observer)
		case identOptionLogger{}:
			if l := opt.Value().(*logrus.Entry); l != nil {
				c.log = l
			}
		case identOptionLightID{}:
			c.lightID = opt.Value().(string)
		}
	}
	if c.next == nil {
		c.next = DefaultInterval()
	}
	c.phase.Store(int32(core.Red))
	return c
}

// CurrentPhase returns the current phase
func (c *PhaseClock) CurrentPhase() core.Phase {
	return core.Phase(c.phase.Load())
}

// SetCurrentPhase overwrites the current phase without publishing it.
// Values other than Red and Green are ignored and reported as false
func (c *PhaseClock) SetCurrentPhase(p core.Phase) bool {
	if !p.IsValid() {
		return false
	}
	c.phase.Store(int32(p))
	return true
}

// Transitions returns the number of toggles performed so far
func (c *PhaseClock) Transitions() uint64 {
	return c.transitions.Load()
}

// Run toggles the phase until ctx is done. Each new phase is sent to the
// queue before the observer is notified and before the next interval starts
func (c *PhaseClock) Run(ctx context.Context) error {
	c.log.Debug("phase clock running")

	since := time.Now()
	interval := c.draw()
	for {
		if err := c.wait(ctx, since, interval); err != nil {
			c.log.WithField("transitions", c.Transitions()).Debug("phase clock stopped")
			return nil
		}

		from, to := c.toggle()
		c.queue.Send(to)
		seq := c.transitions.Add(1)

		c.log.WithFields(logrus.Fields{
			"from":     from,
			"to":       to,
			"interval": interval,
			"seq":      seq,
		}).Debug("phase changed")

		if c.observer != nil {
			c.observer.OnPhaseChange(core.NewPhaseEvent(c.lightID, seq, from, to, interval))
		}

		since = time.Now()
		interval = c.draw()
	}
}

// draw returns the next interval, raised to MinInterval if the source
// returned less
func (c *PhaseClock) draw() time.Duration {
	d := c.next()
	if d < MinInterval {
		c.log.WithField("interval", d).Debug("interval below minimum, clamped")
		d = MinInterval
	}
	return d
}

func (c *PhaseClock) toggle() (from, to core.Phase) {
	for {
		old := c.phase.Load()
		from = core.Phase(old)
		to = from.Toggle()
		if c.phase.CompareAndSwap(old, int32(to)) {
			return from, to
		}
	}
}

// wait returns nil once d has elapsed since the given instant, or ctx.Err()
func (c *PhaseClock) wait(ctx context.Context, since time.Time, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if c.poll > 0 {
		ticker := time.NewTicker(c.poll)
		defer ticker.Stop()
		for time.Since(since) < d {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
		return nil
	}

	for {
		remaining := d - time.Since(since)
		if remaining <= 0 {
			return nil
		}
		timer := time.NewTimer(remaining)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

package trafficlight

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/lestrrat-go/option"
	"github.com/sirupsen/logrus"

	"github.com/anggasct/trafficlight/pkg/clock"
	"github.com/anggasct/trafficlight/pkg/queue"
)

// DefaultWaitPacing is the pause a waiter takes before each receive
const DefaultWaitPacing = time.Millisecond

type (
	// Option configures a TrafficLight
	Option struct {
		option.Interface
	}
	identOptionIntervalRange struct{}
	identOptionIntervalFunc  struct{}
	identOptionSeed          struct{}
	identOptionPollInterval  struct{}
	identOptionWaitPacing    struct{}
	identOptionQueueOrder    struct{}
	identOptionLogger        struct{}
	identOptionObserver      struct{}
	identOptionID            struct{}
)

type intervalRange struct {
	min, max time.Duration
}

// WithIntervalRange sets the bounds, both inclusive, of the randomly drawn
// phase duration. The default is 4s to 6s
func WithIntervalRange(min, max time.Duration) Option {
	return Option{option.New(identOptionIntervalRange{}, intervalRange{min: min, max: max})}
}

// WithIntervalFunc replaces the random phase duration entirely.
// WithIntervalRange and WithSeed are ignored when it is set, and durations
// below clock.MinInterval are raised to it
func WithIntervalFunc(fn clock.IntervalFunc) Option {
	return Option{option.New(identOptionIntervalFunc{}, fn)}
}

// WithSeed makes the drawn phase durations reproducible
func WithSeed(seed int64) Option {
	return Option{option.New(identOptionSeed{}, seed)}
}

// WithPollInterval makes the clock re-check elapsed time every d instead of
// sleeping on a timer. Zero, the default, disables polling
func WithPollInterval(d time.Duration) Option {
	return Option{option.New(identOptionPollInterval{}, d)}
}

// WithWaitPacing sets the pause taken before each receive in WaitForGreen.
// Zero makes waiters block on the queue directly
func WithWaitPacing(d time.Duration) Option {
	return Option{option.New(identOptionWaitPacing{}, d)}
}

// WithQueueOrder selects the notification queue policy. The default is FIFO
func WithQueueOrder(o queue.Order) Option {
	return Option{option.New(identOptionQueueOrder{}, o)}
}

// WithLogger sets the base log entry. The default uses the logrus standard logger
func WithLogger(l *logrus.Entry) Option {
	return Option{option.New(identOptionLogger{}, l)}
}

// WithObserver registers an observer before the light can start
func WithObserver(o Observer) Option {
	return Option{option.New(identOptionObserver{}, o)}
}

// WithID overrides the generated light ID
func WithID(id string) Option {
	return Option{option.New(identOptionID{}, id)}
}

type config struct {
	id           string
	minInterval  time.Duration
	maxInterval  time.Duration
	intervalFunc clock.IntervalFunc
	seed         *int64
	pollInterval time.Duration
	waitPacing   time.Duration
	order        queue.Order
	logger       *logrus.Entry
	observers    []Observer
}

func newConfig(opts []Option) (config, error) {
	cfg := config{
		minInterval: clock.DefaultMinInterval,
		maxInterval: clock.DefaultMaxInterval,
		waitPacing:  DefaultWaitPacing,
		order:       queue.FIFO,
	}

	for _, opt := range opts {
		switch opt.Ident() {
		case identOptionIntervalRange{}:
			r := opt.Value().(intervalRange)
			cfg.minInterval, cfg.maxInterval = r.min, r.max
		case identOptionIntervalFunc{}:
			cfg.intervalFunc = opt.Value().(clock.IntervalFunc)
		case identOptionSeed{}:
			seed := opt.Value().(int64)
			cfg.seed = &seed
		case identOptionPollInterval{}:
			cfg.pollInterval = opt.Value().(time.Duration)
		case identOptionWaitPacing{}:
			cfg.waitPacing = opt.Value().(time.Duration)
		case identOptionQueueOrder{}:
			cfg.order = opt.Value().(queue.Order)
		case identOptionLogger{}:
			cfg.logger = opt.Value().(*logrus.Entry)
		case identOptionObserver{}:
			cfg.observers = append(cfg.observers, opt.Value().(Observer))
		case identOptionID{}:
			cfg.id = opt.Value().(string)
		}
	}

	if err := cfg.validate(); err != nil {
		return config{}, err
	}

	if cfg.intervalFunc == nil {
		var r *rand.Rand
		if cfg.seed != nil {
			r = rand.New(rand.NewSource(*cfg.seed))
		}
		cfg.intervalFunc = clock.UniformInterval(cfg.minInterval, cfg.maxInterval, r)
	}
	if cfg.logger == nil {
		cfg.logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return cfg, nil
}

func (cfg config) validate() error {
	if cfg.intervalFunc == nil {
		if cfg.minInterval < time.Millisecond {
			return NewConfigurationError("TrafficLight", fmt.Sprintf("minimum interval %s is below 1ms", cfg.minInterval))
		}
		if cfg.maxInterval < cfg.minInterval {
			return NewConfigurationError("TrafficLight", fmt.Sprintf("maximum interval %s is below minimum %s", cfg.maxInterval, cfg.minInterval))
		}
	}
	if cfg.pollInterval < 0 {
		return NewConfigurationError("TrafficLight", "poll interval must not be negative")
	}
	if cfg.waitPacing < 0 {
		return NewConfigurationError("TrafficLight", "wait pacing must not be negative")
	}
	if cfg.order != queue.FIFO && cfg.order != queue.LIFO {
		return NewConfigurationError("TrafficLight", fmt.Sprintf("unknown queue order %s", cfg.order))
	}
	return nil
}

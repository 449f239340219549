package clock

import (
	"math/rand"
	"time"
)

const (
	// DefaultMinInterval is the shortest time a phase is held
	DefaultMinInterval = 4000 * time.Millisecond

	// DefaultMaxInterval is the longest time a phase is held
	DefaultMaxInterval = 6000 * time.Millisecond

	// MinInterval is the shortest phase the clock will run, whatever its
	// IntervalFunc returns
	MinInterval = time.Millisecond
)

// IntervalFunc returns how long the next phase lasts. It is only ever called
// from the clock goroutine, and results below MinInterval are raised to it
type IntervalFunc func() time.Duration

// UniformInterval draws whole milliseconds uniformly from [min, max], both
// ends included. A nil r is seeded from the current time
func UniformInterval(min, max time.Duration, r *rand.Rand) IntervalFunc {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	lo := min.Milliseconds()
	span := max.Milliseconds() - lo + 1
	if span < 1 {
		span = 1
	}
	return func() time.Duration {
		return time.Duration(lo+r.Int63n(span)) * time.Millisecond
	}
}

// FixedInterval always returns d
func FixedInterval(d time.Duration) IntervalFunc {
	return func() time.Duration { return d }
}

// DefaultInterval draws from [DefaultMinInterval, DefaultMaxInterval]
func DefaultInterval() IntervalFunc {
	return UniformInterval(DefaultMinInterval, DefaultMaxInterval, nil)
}

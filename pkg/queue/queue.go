// Package queue provides a generic blocking hand-off queue
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/lestrrat-go/option"
)

// Order is the policy used to pick which queued element a receiver gets
type Order int

const (
	// FIFO hands out the oldest element first
	FIFO Order = iota

	// LIFO hands out the most recently sent element first
	LIFO
)

// String returns the policy name
func (o Order) String() string {
	switch o {
	case FIFO:
		return "fifo"
	case LIFO:
		return "lifo"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

type (
	// Option configures a BlockingQueue
	Option struct {
		option.Interface
	}
	identOptionOrder    struct{}
	identOptionCapacity struct{}
)

// WithOrder selects the removal policy. The default is FIFO
func WithOrder(o Order) Option {
	return Option{option.New(identOptionOrder{}, o)}
}

// WithCapacity preallocates room for n elements. The queue stays unbounded
func WithCapacity(n int) Option {
	return Option{option.New(identOptionCapacity{}, n)}
}

// BlockingQueue is an unbounded queue where Send never blocks and Receive
// blocks until an element is available. Each element is delivered to exactly
// one receiver.
//
// All methods are safe for concurrent use by multiple goroutines
type BlockingQueue[T any] struct {
	mu    sync.Mutex
	cv    *sync.Cond
	items []T
	order Order
}

// New creates an empty queue
func New[T any](opts ...Option) *BlockingQueue[T] {
	q := &BlockingQueue[T]{order: FIFO}
	for _, opt := range opts {
		switch opt.Ident() {
		case identOptionOrder{}:
			q.order = opt.Value().(Order)
		case identOptionCapacity{}:
			if n := opt.Value().(int); n > 0 {
				q.items = make([]T, 0, n)
			}
		}
	}
	q.cv = sync.NewCond(&q.mu)
	return q
}

// Send appends v and wakes at most one blocked receiver
func (q *BlockingQueue[T]) Send(v T) {
	q.mu.Lock()
	q.items = append(q.items, v)
	q.mu.Unlock()
	q.cv.Signal()
}

// Receive blocks until an element is available, then removes and returns it.
// It waits forever if nothing is ever sent
func (q *BlockingQueue[T]) Receive() T {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 {
		q.cv.Wait()
	}
	v, _ := q.pop()
	return v
}

// ReceiveContext is like Receive but gives up when ctx is done, returning the
// zero value and ctx.Err(). An element that is already queued wins over a
// finished context
func (q *BlockingQueue[T]) ReceiveContext(ctx context.Context) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	q.mu.Lock()
	if v, ok := q.pop(); ok {
		q.mu.Unlock()
		return v, nil
	}
	if err := ctx.Err(); err != nil {
		q.mu.Unlock()
		var zero T
		return zero, err
	}

	// Wake every waiter on cancellation so this one can observe ctx.Err()
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.cv.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	for {
		q.cv.Wait()
		if v, ok := q.pop(); ok {
			q.mu.Unlock()
			return v, nil
		}
		if err := ctx.Err(); err != nil {
			q.mu.Unlock()
			var zero T
			return zero, err
		}
	}
}

// TryReceive removes and returns an element without blocking.
// ok is false if the queue is empty
func (q *BlockingQueue[T]) TryReceive() (v T, ok bool) {
	q.mu.Lock()
	v, ok = q.pop()
	q.mu.Unlock()
	return
}

// Len returns the number of queued elements
func (q *BlockingQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Order returns the removal policy
func (q *BlockingQueue[T]) Order() Order {
	return q.order
}

// pop must be called with q.mu held
func (q *BlockingQueue[T]) pop() (T, bool) {
	var zero T
	n := len(q.items)
	if n == 0 {
		return zero, false
	}

	var v T
	if q.order == LIFO {
		v = q.items[n-1]
		q.items[n-1] = zero
		q.items = q.items[:n-1]
	} else {
		v = q.items[0]
		q.items[0] = zero
		q.items = q.items[1:]
	}
	return v, true
}

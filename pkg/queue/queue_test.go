package queue_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anggasct/trafficlight/pkg/core"
	"github.com/anggasct/trafficlight/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestOrderPolicy(t *testing.T) {
	t.Run("FIFO is the default", func(t *testing.T) {
		q := queue.New[core.Phase]()
		assert.Equal(t, queue.FIFO, q.Order())

		q.Send(core.Green)
		q.Send(core.Red)
		assert.Equal(t, core.Green, q.Receive())
		assert.Equal(t, core.Red, q.Receive())
		assert.Equal(t, 0, q.Len())
	})

	t.Run("LIFO returns the latest send first", func(t *testing.T) {
		q := queue.New[core.Phase](queue.WithOrder(queue.LIFO))
		assert.Equal(t, queue.LIFO, q.Order())

		q.Send(core.Green)
		q.Send(core.Red)
		assert.Equal(t, core.Red, q.Receive())
		assert.Equal(t, core.Green, q.Receive())
		assert.Equal(t, 0, q.Len())
	})

	t.Run("LIFO leaves older elements untouched", func(t *testing.T) {
		q := queue.New[int](queue.WithOrder(queue.LIFO), queue.WithCapacity(8))
		for i := 1; i <= 4; i++ {
			q.Send(i)
		}
		assert.Equal(t, 4, q.Receive())
		q.Send(5)
		assert.Equal(t, 5, q.Receive())
		assert.Equal(t, 3, q.Receive())
		assert.Equal(t, 2, q.Len())
	})

	t.Run("Order names", func(t *testing.T) {
		assert.Equal(t, "fifo", queue.FIFO.String())
		assert.Equal(t, "lifo", queue.LIFO.String())
		assert.Equal(t, "Order(5)", queue.Order(5).String())
	})
}

func TestReceiveBlocksUntilSend(t *testing.T) {
	q := queue.New[string]()
	got := make(chan string, 1)

	go func() {
		got <- q.Receive()
	}()

	select {
	case v := <-got:
		t.Fatalf("receive returned %q before any send", v)
	case <-time.After(20 * time.Millisecond):
	}

	q.Send("x")

	select {
	case v := <-got:
		assert.Equal(t, "x", v)
	case <-time.After(time.Second):
		t.Fatal("receive did not wake after send")
	}
}

func TestTryReceive(t *testing.T) {
	q := queue.New[int]()

	_, ok := q.TryReceive()
	assert.False(t, ok)

	q.Send(42)
	v, ok := q.TryReceive()
	assert.True(t, ok)
	assert.Equal(t, 42, v)
	assert.Equal(t, 0, q.Len())
}

func TestReceiveContext(t *testing.T) {
	t.Run("Deadline", func(t *testing.T) {
		q := queue.New[int]()
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := q.ReceiveContext(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("Cancel wakes a blocked receiver", func(t *testing.T) {
		q := queue.New[int]()
		ctx, cancel := context.WithCancel(context.Background())
		errc := make(chan error, 1)

		go func() {
			_, err := q.ReceiveContext(ctx)
			errc <- err
		}()

		time.Sleep(10 * time.Millisecond)
		cancel()

		select {
		case err := <-errc:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(time.Second):
			t.Fatal("receiver was not woken by cancellation")
		}
	})

	t.Run("Queued element wins over finished context", func(t *testing.T) {
		q := queue.New[int]()
		q.Send(7)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		v, err := q.ReceiveContext(ctx)
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	})

	t.Run("Nil context behaves like background", func(t *testing.T) {
		q := queue.New[int]()
		q.Send(1)
		v, err := q.ReceiveContext(nil)
		require.NoError(t, err)
		assert.Equal(t, 1, v)
	})

	t.Run("Wakes on send", func(t *testing.T) {
		q := queue.New[int]()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		go func() {
			time.Sleep(10 * time.Millisecond)
			q.Send(3)
		}()

		v, err := q.ReceiveContext(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, v)
	})
}

func TestSingleElementDeliveredOnce(t *testing.T) {
	const receivers = 8

	q := queue.New[core.Phase]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		delivered atomic.Int32
		started   sync.WaitGroup
		eg        errgroup.Group
	)
	started.Add(receivers)
	for i := 0; i < receivers; i++ {
		eg.Go(func() error {
			started.Done()
			if _, err := q.ReceiveContext(ctx); err == nil {
				delivered.Add(1)
			}
			return nil
		})
	}

	started.Wait()
	time.Sleep(20 * time.Millisecond)
	q.Send(core.Green)

	// The others keep blocking until cancelled
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), delivered.Load())

	cancel()
	require.NoError(t, eg.Wait())
	assert.Equal(t, int32(1), delivered.Load())
	assert.Equal(t, 0, q.Len())
}

func TestBlockedReceiversEachGetOneElement(t *testing.T) {
	const receivers = 8

	q := queue.New[int]()
	results := make(chan int, receivers)

	var started sync.WaitGroup
	started.Add(receivers)
	for i := 0; i < receivers; i++ {
		go func() {
			started.Done()
			results <- q.Receive()
		}()
	}

	started.Wait()
	time.Sleep(20 * time.Millisecond)
	q.Send(0)

	select {
	case v := <-results:
		assert.Equal(t, 0, v)
	case <-time.After(time.Second):
		t.Fatal("no receiver woke after send")
	}

	// The rest stay blocked
	select {
	case v := <-results:
		t.Fatalf("second receiver returned %d with nothing left to send", v)
	case <-time.After(30 * time.Millisecond):
	}

	for i := 1; i < receivers; i++ {
		q.Send(i)
	}

	seen := map[int]bool{0: true}
	for i := 1; i < receivers; i++ {
		select {
		case v := <-results:
			assert.False(t, seen[v], "element %d delivered twice", v)
			seen[v] = true
		case <-time.After(time.Second):
			t.Fatalf("only %d of %d receivers returned", i, receivers)
		}
	}
	assert.Len(t, seen, receivers)
	assert.Equal(t, 0, q.Len())
}

func TestHighConcurrencyExactlyOnce(t *testing.T) {
	const (
		producers = 4
		perProd   = 250
		consumers = 6
		total     = producers * perProd
	)

	q := queue.New[int]()
	seen := make([]atomic.Int32, total)
	var received atomic.Int32

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var consumersGroup errgroup.Group
	for i := 0; i < consumers; i++ {
		consumersGroup.Go(func() error {
			for received.Load() < total {
				rctx, rcancel := context.WithTimeout(ctx, 50*time.Millisecond)
				v, err := q.ReceiveContext(rctx)
				rcancel()
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					continue
				}
				seen[v].Add(1)
				received.Add(1)
			}
			return nil
		})
	}

	var producersGroup errgroup.Group
	for p := 0; p < producers; p++ {
		base := p * perProd
		producersGroup.Go(func() error {
			for i := 0; i < perProd; i++ {
				q.Send(base + i)
			}
			return nil
		})
	}

	require.NoError(t, producersGroup.Wait())
	require.NoError(t, consumersGroup.Wait())

	assert.Equal(t, int32(total), received.Load())
	for i := range seen {
		assert.Equal(t, int32(1), seen[i].Load(), "element %d", i)
	}
}

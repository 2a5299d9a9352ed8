package event

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"shiftcare/backend/internal/swap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestDispatcher(buffer, workers int) *Dispatcher {
	return NewDispatcher(Options{Buffer: buffer, Workers: workers, HandlerTimeout: time.Second}, zap.NewNop())
}

func TestDispatcher_DeliversToEverySubscriberOfType(t *testing.T) {
	d := newTestDispatcher(8, 2)

	var mu sync.Mutex
	got := map[string][]swap.EventType{}
	record := func(name string) Handler {
		return func(_ context.Context, ev swap.Event) error {
			mu.Lock()
			defer mu.Unlock()
			got[name] = append(got[name], ev.Type)
			return nil
		}
	}
	d.Subscribe("notifier", record("notifier"), swap.AllEventTypes...)
	d.Subscribe("reassigner", record("reassigner"), swap.EventApproved)
	d.Start()

	assert.True(t, d.Publish(swap.Event{Type: swap.EventAccepted, SwapRequestID: "s1"}))
	assert.True(t, d.Publish(swap.Event{Type: swap.EventApproved, SwapRequestID: "s1"}))
	require.NoError(t, d.Close(context.Background()))

	assert.ElementsMatch(t, []swap.EventType{swap.EventAccepted, swap.EventApproved}, got["notifier"])
	assert.Equal(t, []swap.EventType{swap.EventApproved}, got["reassigner"])
}

func TestDispatcher_HandlerErrorDoesNotAffectOthers(t *testing.T) {
	d := newTestDispatcher(4, 1)

	var delivered atomic.Int32
	d.Subscribe("failing", func(context.Context, swap.Event) error {
		return errors.New("db down")
	}, swap.EventDeclined)
	d.Subscribe("panicking", func(context.Context, swap.Event) error {
		panic("boom")
	}, swap.EventDeclined)
	d.Subscribe("ok", func(context.Context, swap.Event) error {
		delivered.Add(1)
		return nil
	}, swap.EventDeclined)
	d.Start()

	d.Publish(swap.Event{Type: swap.EventDeclined})
	d.Publish(swap.Event{Type: swap.EventDeclined})
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, int32(2), delivered.Load())
}

func TestDispatcher_PublishNeverBlocksWhenFull(t *testing.T) {
	d := newTestDispatcher(1, 1)
	// not started: the single slot fills up

	assert.True(t, d.Publish(swap.Event{Type: swap.EventCreated}))

	done := make(chan bool)
	go func() { done <- d.Publish(swap.Event{Type: swap.EventCreated}) }()
	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full queue")
	}

	require.NoError(t, d.Close(context.Background()))
}

func TestDispatcher_PublishAfterCloseIsDropped(t *testing.T) {
	d := newTestDispatcher(4, 1)
	d.Start()
	require.NoError(t, d.Close(context.Background()))

	assert.False(t, d.Publish(swap.Event{Type: swap.EventCreated}))
	// second close is harmless
	require.NoError(t, d.Close(context.Background()))
}

func TestDispatcher_CloseDrainsQueue(t *testing.T) {
	d := newTestDispatcher(16, 1)

	var delivered atomic.Int32
	d.Subscribe("slow", func(context.Context, swap.Event) error {
		time.Sleep(5 * time.Millisecond)
		delivered.Add(1)
		return nil
	}, swap.EventCancelled)

	for i := 0; i < 10; i++ {
		require.True(t, d.Publish(swap.Event{Type: swap.EventCancelled}))
	}
	d.Start()
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, int32(10), delivered.Load())
}

func TestDispatcher_CloseDeadlineCancelsHandlers(t *testing.T) {
	d := newTestDispatcher(4, 1)

	started := make(chan struct{})
	d.Subscribe("stuck", func(ctx context.Context, _ swap.Event) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}, swap.EventApproved)
	d.Start()
	d.Publish(swap.Event{Type: swap.EventApproved})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := d.Close(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

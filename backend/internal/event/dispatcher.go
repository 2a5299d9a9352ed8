// Package event delivers swap lifecycle events to in-process subscribers
// without blocking the transition that produced them.
package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"shiftcare/backend/internal/swap"
)

// Handler consumes one event. Errors are logged, never propagated.
type Handler func(ctx context.Context, ev swap.Event) error

// Options tunes the dispatcher.
type Options struct {
	Buffer         int
	Workers        int
	HandlerTimeout time.Duration
}

type subscriber struct {
	name string
	fn   Handler
}

// Dispatcher is a buffered in-process event bus.
type Dispatcher struct {
	logger  *zap.Logger
	opts    Options
	queue   chan swap.Event
	baseCtx context.Context
	cancel  context.CancelFunc

	mu       sync.RWMutex
	subs     map[swap.EventType][]subscriber
	started  bool
	closed   bool
	workers  sync.WaitGroup
	stopOnce sync.Once
}

// NewDispatcher creates a dispatcher; call Start after subscribing.
func NewDispatcher(opts Options, logger *zap.Logger) *Dispatcher {
	if opts.Buffer <= 0 {
		opts.Buffer = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.HandlerTimeout <= 0 {
		opts.HandlerTimeout = 30 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		logger:  logger,
		opts:    opts,
		queue:   make(chan swap.Event, opts.Buffer),
		baseCtx: ctx,
		cancel:  cancel,
		subs:    make(map[swap.EventType][]subscriber),
	}
}

// Subscribe registers fn for the given event types.
func (d *Dispatcher) Subscribe(name string, fn Handler, types ...swap.EventType) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range types {
		d.subs[t] = append(d.subs[t], subscriber{name: name, fn: fn})
	}
}

// Start launches the worker goroutines. Calling it twice is a no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true
	for i := 0; i < d.opts.Workers; i++ {
		d.workers.Add(1)
		go d.run()
	}
}

// Publish enqueues ev without blocking. It reports false when the event was
// dropped because the queue is full or the dispatcher is closed.
func (d *Dispatcher) Publish(ev swap.Event) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("event dropped: dispatcher closed",
			zap.String("type", string(ev.Type)),
			zap.String("swap_request_id", ev.SwapRequestID),
		)
		return false
	}
	select {
	case d.queue <- ev:
		return true
	default:
		d.logger.Warn("event dropped: queue full",
			zap.String("type", string(ev.Type)),
			zap.String("swap_request_id", ev.SwapRequestID),
			zap.Int("buffer", d.opts.Buffer),
		)
		return false
	}
}

// Close stops intake and waits for queued events to be delivered. When ctx
// expires first, in-flight handlers are cancelled and ctx.Err is returned.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		started := d.started
		d.mu.Unlock()
		if !started {
			d.cancel()
		}
	})

	done := make(chan struct{})
	go func() {
		d.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return fmt.Errorf("drain event queue: %w", ctx.Err())
	}
}

func (d *Dispatcher) run() {
	defer d.workers.Done()
	for ev := range d.queue {
		d.deliver(ev)
	}
}

func (d *Dispatcher) deliver(ev swap.Event) {
	d.mu.RLock()
	subs := d.subs[ev.Type]
	d.mu.RUnlock()
	if len(subs) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(d.baseCtx, d.opts.HandlerTimeout)
	defer cancel()

	var g errgroup.Group
	for _, s := range subs {
		s := s
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					d.logger.Error("event handler panicked",
						zap.String("handler", s.name),
						zap.String("type", string(ev.Type)),
						zap.Any("panic", r),
					)
				}
			}()
			if herr := s.fn(ctx, ev); herr != nil {
				d.logger.Warn("event handler failed",
					zap.String("handler", s.name),
					zap.String("type", string(ev.Type)),
					zap.String("swap_request_id", ev.SwapRequestID),
					zap.Error(herr),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
}

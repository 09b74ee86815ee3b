package event

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"supplieriq/internal/infra"

	"github.com/rs/zerolog/log"
)

// Handler processes one event. A returned error is logged by the bus and
// reported on the Delivery; it never stops the remaining handlers.
type Handler func(ctx context.Context, ev Event) error

type subscription struct {
	name    string
	handler Handler
}

// Bus dispatches events to the handlers registered for their Kind.
// It is built once in the composition root and injected where needed.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Kind][]subscription

	inflight sync.WaitGroup
	metrics  *infra.Metrics
}

// NewBus creates an empty bus. metrics may be nil.
func NewBus(metrics *infra.Metrics) *Bus {
	return &Bus{
		handlers: make(map[Kind][]subscription),
		metrics:  metrics,
	}
}

// Subscribe appends handler to the list for kind. Handlers run in registration order.
func (b *Bus) Subscribe(kind Kind, name string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = append(b.handlers[kind], subscription{name: name, handler: handler})
	log.Debug().Str("kind", string(kind)).Str("subscriber", name).Msg("event_bus: subscribed")
}

// On registers a handler typed on the concrete event variant E.
func On[E Event](b *Bus, name string, fn func(ctx context.Context, ev E) error) {
	var zero E
	b.Subscribe(zero.Kind(), name, func(ctx context.Context, ev Event) error {
		typed, ok := ev.(E)
		if !ok {
			return fmt.Errorf("event_bus: %s expected %T, got %T", name, zero, ev)
		}
		return fn(ctx, typed)
	})
}

// Publish starts delivering ev in the background and returns immediately.
// With no subscribers the returned Delivery is already complete.
// Handlers receive a context that keeps ctx's values but not its cancellation.
func (b *Bus) Publish(ctx context.Context, ev Event) *Delivery {
	kind := ev.Kind()

	b.mu.RLock()
	subs := append([]subscription(nil), b.handlers[kind]...)
	b.mu.RUnlock()

	b.metrics.EventPublished(string(kind))

	d := newDelivery(kind)
	if len(subs) == 0 {
		log.Debug().Str("kind", string(kind)).Msg("event_bus: no subscribers")
		close(d.done)
		return d
	}

	hctx := context.WithoutCancel(ctx)
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		defer close(d.done)
		for _, s := range subs {
			d.results = append(d.results, b.invoke(hctx, kind, s, ev))
		}
	}()
	return d
}

// invoke runs one handler, converting panics into errors.
func (b *Bus) invoke(ctx context.Context, kind Kind, s subscription, ev Event) (res HandlerResult) {
	res.Subscriber = s.name
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
			log.Error().
				Str("kind", string(kind)).
				Str("subscriber", s.name).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("event_bus: handler panicked")
		}
		res.Duration = time.Since(start)
		if res.Err != nil {
			b.metrics.HandlerFailed(string(kind), s.name)
		}
	}()

	if err := s.handler(ctx, ev); err != nil {
		res.Err = err
		log.Error().
			Err(err).
			Str("kind", string(kind)).
			Str("subscriber", s.name).
			Msg("event_bus: handler failed")
	}
	return res
}

// Drain blocks until every delivery started so far has finished or ctx is done.
func (b *Bus) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ErrHandlerPanic wraps a value recovered from a panicking handler.
var ErrHandlerPanic = errors.New("event handler panicked")

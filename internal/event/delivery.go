package event

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// HandlerResult is the outcome of one subscriber for one published event.
type HandlerResult struct {
	Subscriber string
	Err        error
	Duration   time.Duration
}

// Delivery tracks the background dispatch of a single Publish call.
// Production callers usually ignore it; tests and shutdown code wait on it.
type Delivery struct {
	Kind    Kind
	done    chan struct{}
	results []HandlerResult
}

func newDelivery(kind Kind) *Delivery {
	return &Delivery{Kind: kind, done: make(chan struct{})}
}

// Done is closed once every handler has returned.
func (d *Delivery) Done() <-chan struct{} { return d.done }

// Wait blocks until the delivery finishes and returns per-handler results
// in registration order.
func (d *Delivery) Wait(ctx context.Context) ([]HandlerResult, error) {
	select {
	case <-d.done:
		return d.results, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Err joins the errors of all failed handlers. It is nil while the delivery is still running.
func (d *Delivery) Err() error {
	select {
	case <-d.done:
	default:
		return nil
	}
	var errs []error
	for _, r := range d.results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Subscriber, r.Err))
		}
	}
	return errors.Join(errs...)
}

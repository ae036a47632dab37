package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher fans domain events out to in-process handlers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// bus delivers events synchronously, in subscription order, so the caller
// learns whether the e-mail alert and the stream write went through.
type bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]EventHandler
}

// NewInMemoryDispatcher creates a synchronous in-process dispatcher.
func NewInMemoryDispatcher() Dispatcher {
	return &bus{handlers: make(map[EventType][]EventHandler)}
}

// Publish runs every handler for the event's type even when earlier ones
// fail or panic, and joins their errors. A cancelled context stops delivery
// to the remaining handlers.
func (b *bus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := b.handlers[event.Type]
	b.mu.RUnlock()

	var errs []error
	for i, handler := range handlers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %d handlers skipped: %w", event.Type, len(handlers)-i, err))
			break
		}
		if err := deliver(ctx, handler, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func deliver(ctx context.Context, handler EventHandler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s handler panicked: %v", event.Type, r)
		}
	}()
	return handler(ctx, event)
}

// Subscribe registers a handler for the given event type.
func (b *bus) Subscribe(eventType EventType, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	// copy-on-write so Publish can iterate a snapshot without holding the lock
	next := make([]EventHandler, len(b.handlers[eventType]), len(b.handlers[eventType])+1)
	copy(next, b.handlers[eventType])
	b.handlers[eventType] = append(next, handler)
}

// Sink receives every event, e.g. to forward it to a stream.
type Sink interface {
	Write(ctx context.Context, event Event) error
}

// Forward subscribes sink to every event type.
func Forward(d Dispatcher, sink Sink) {
	for _, t := range AllTypes {
		d.Subscribe(t, sink.Write)
	}
}

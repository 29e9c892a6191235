package events

import (
	"context"
	"sync"
	"time"

	"github.com/njangir/acing-interview/logger"
	"github.com/njangir/acing-interview/models/booking_models"
)

// BookingChange carries the persisted before/after snapshots of one
// booking write. Before is nil for a freshly created booking.
type BookingChange struct {
	Before *booking_models.Booking
	After  *booking_models.Booking
}

// Handler consumes one booking change. Handlers must tolerate being
// called concurrently for different bookings.
type Handler func(ctx context.Context, change BookingChange)

// Bus is an in-process publisher for booking changes. Publishing is
// fire-and-forget relative to the triggering write: handlers run on
// their own goroutine with a fresh context, and a handler failure or
// panic never reaches the caller.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	wg       sync.WaitGroup
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for all subsequent publishes.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// PublishBookingChange fans the change out to every handler.
func (b *Bus) PublishBookingChange(before, after *booking_models.Booking) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	change := BookingChange{Before: before, After: after}
	for _, h := range handlers {
		h := h
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.ErrorLogger.Errorf("Booking change handler panicked: %v", r)
				}
			}()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			h(ctx, change)
		}()
	}
}

// Wait blocks until all in-flight handlers finish. Used on shutdown and
// in tests.
func (b *Bus) Wait() {
	b.wg.Wait()
}

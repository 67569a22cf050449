package middleware

import (
	"sync"

	"LoadLedger/internal/domain/models"
	xlogger "LoadLedger/pkg/logger"
)

// RunEventBus fans run events out to stream subscribers. Publishing never
// blocks: a subscriber whose buffer is full is dropped from the bus and
// its channel closed, so one stalled WebSocket cannot stall a run.
type RunEventBus struct {
	mu      sync.Mutex
	subs    map[chan models.RunEvent]struct{}
	bufSize int
	logger  *xlogger.Logger
	closed  bool
}

type BusOption func(*RunEventBus)

// WithSubscriberBuffer sets the per-subscriber event buffer.
func WithSubscriberBuffer(n int) BusOption {
	return func(b *RunEventBus) {
		if n > 0 {
			b.bufSize = n
		}
	}
}

func NewRunEventBus(logger *xlogger.Logger, opts ...BusOption) *RunEventBus {
	b := &RunEventBus{
		subs:    make(map[chan models.RunEvent]struct{}),
		bufSize: 64,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a new subscriber and returns its event channel.
// The channel is closed on Unsubscribe, on bus Close, or when the
// subscriber falls behind.
func (b *RunEventBus) Subscribe() chan models.RunEvent {
	ch := make(chan models.RunEvent, b.bufSize)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscriber. Safe to call after the bus already
// dropped it.
func (b *RunEventBus) Unsubscribe(ch chan models.RunEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; !ok {
		return
	}
	delete(b.subs, ch)
	close(ch)
}

// Publish delivers an event to every subscriber that can take it.
func (b *RunEventBus) Publish(ev models.RunEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			delete(b.subs, ch)
			close(ch)
			b.logger.Warn("run stream subscriber dropped, buffer full",
				xlogger.String("run_id", ev.RunID),
				xlogger.Int("buffer", b.bufSize))
		}
	}
}

// Subscribers returns the current subscriber count.
func (b *RunEventBus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close drops all subscribers and rejects future ones.
func (b *RunEventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}

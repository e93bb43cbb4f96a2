// Package events implements the in-process update broker.
// It is transport-agnostic: subscribers register, receive updates via a
// channel, and the capture loop publishes. Delivery is non-blocking; a
// subscriber that falls behind misses updates rather than stalling capture.
package events

import (
	"log/slog"
	"sync"
)

// Update announces that a new item was persisted to the history.
type Update struct {
	ID          int64  `json:"id"`
	ContentType string `json:"content_type"`
	Preview     string `json:"preview"`
	CreatedAt   string `json:"created_at"`
}

// subscriberBuffer bounds how many undelivered updates a subscriber may
// accumulate before further updates are dropped for it.
const subscriberBuffer = 16

// Broker fans out updates to all current subscribers.
type Broker struct {
	mu     sync.RWMutex
	subs   map[int]chan Update
	nextID int
	latest *Update
}

// New returns an empty Broker.
func New() *Broker {
	return &Broker{subs: make(map[int]chan Update)}
}

// Subscribe registers a new subscriber and returns its channel together with
// a cancel function. The channel is closed by cancel; it must not be closed
// by the caller. The most recently published update, if any, is delivered
// immediately so a new subscriber starts from the current state.
func (b *Broker) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, subscriberBuffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	if b.latest != nil {
		ch <- *b.latest
	}
	total := len(b.subs)
	b.mu.Unlock()

	slog.Debug("subscriber registered", "subscriber", id, "total", total)

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
		total := len(b.subs)
		b.mu.Unlock()
		slog.Debug("subscriber removed", "subscriber", id, "total", total)
	}
	return ch, cancel
}

// Publish records u as the latest update and fans it out to all subscribers.
// Sends happen under the lock so cancel can never close a channel mid-fanout;
// they are non-blocking, so the hold time stays bounded.
func (b *Broker) Publish(u Update) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.latest = &u
	for _, ch := range b.subs {
		select {
		case ch <- u:
		default:
			slog.Debug("subscriber lagging, update dropped", "item", u.ID)
		}
	}
}

// Subscribers reports the current subscriber count.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := New()

	ch1, cancel1 := b.Subscribe()
	defer cancel1()
	ch2, cancel2 := b.Subscribe()
	defer cancel2()

	b.Publish(Update{ID: 1, ContentType: "text", Preview: "hi"})

	for _, ch := range []<-chan Update{ch1, ch2} {
		select {
		case u := <-ch:
			assert.EqualValues(t, 1, u.ID)
		default:
			t.Fatal("subscriber did not receive the update")
		}
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	b := New()

	ch, cancel := b.Subscribe()
	cancel()
	cancel() // idempotent

	assert.Zero(t, b.Subscribers())

	_, open := <-ch
	assert.False(t, open, "channel should be closed after cancel")

	// Publishing after cancel must not panic.
	b.Publish(Update{ID: 2})
}

func TestLaggingSubscriberDoesNotBlockPublish(t *testing.T) {
	b := New()

	ch, cancel := b.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer+10; i++ {
		b.Publish(Update{ID: int64(i)})
	}

	// The buffer holds the oldest updates; the overflow was dropped.
	require.Len(t, ch, subscriberBuffer)
	u := <-ch
	assert.EqualValues(t, 0, u.ID)
}

func TestSubscribeReceivesLatestUpdate(t *testing.T) {
	b := New()

	b.Publish(Update{ID: 5, Preview: "p"})
	b.Publish(Update{ID: 6, Preview: "q"})

	ch, cancel := b.Subscribe()
	defer cancel()

	select {
	case u := <-ch:
		assert.EqualValues(t, 6, u.ID)
	default:
		t.Fatal("new subscriber did not receive the latest update")
	}

	// Only the most recent update is replayed.
	select {
	case u := <-ch:
		t.Fatalf("unexpected second update %v", u)
	default:
	}
}

func TestPublishDuringCancelDoesNotPanic(t *testing.T) {
	b := New()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					b.Publish(Update{ID: 1})
				}
			}
		}()
	}

	// Subscriber churn while publishes are in flight must never hit a
	// closed channel.
	for i := 0; i < 500; i++ {
		_, cancel := b.Subscribe()
		cancel()
	}

	close(stop)
	wg.Wait()
	assert.Zero(t, b.Subscribers())
}

package transcribe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcaster_FanOut(t *testing.T) {
	b := NewBroadcaster(nil)
	ctx := context.Background()

	ch1, _ := b.Subscribe(ctx, "session-1")
	ch2, _ := b.Subscribe(ctx, "session-1")
	other, _ := b.Subscribe(ctx, "session-2")

	b.Publish("session-1", Update{Transcript: "hello"})

	for _, ch := range []<-chan Update{ch1, ch2} {
		select {
		case u := <-ch:
			assert.Equal(t, "hello", u.Transcript)
		case <-time.After(time.Second):
			t.Fatal("subscriber never received update")
		}
	}

	select {
	case <-other:
		t.Fatal("subscriber of another session received update")
	default:
	}
}

func TestBroadcaster_UnsubscribeClosesChannel(t *testing.T) {
	b := NewBroadcaster(nil)

	ch, subID := b.Subscribe(context.Background(), "session-1")
	b.Unsubscribe("session-1", subID)

	_, ok := <-ch
	assert.False(t, ok, "channel closed after unsubscribe")

	// Unsubscribing again is harmless
	b.Unsubscribe("session-1", subID)
}

func TestBroadcaster_ContextCancelUnsubscribes(t *testing.T) {
	b := NewBroadcaster(nil)

	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := b.Subscribe(ctx, "session-1")
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after context cancellation")
	}
}

func TestBroadcaster_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroadcaster(nil)

	_, _ = b.Subscribe(context.Background(), "session-1")

	// Fill well past the buffer; Publish must never block
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBufferSize*2; i++ {
			b.Publish("session-1", Update{Transcript: "x"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestBroadcaster_PublishNoSubscribers(t *testing.T) {
	b := NewBroadcaster(nil)
	require.NotPanics(t, func() {
		b.Publish("nobody", Update{Transcript: "void"})
	})
}

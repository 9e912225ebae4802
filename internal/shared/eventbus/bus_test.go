package eventbus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// DummyEvent implements Event for testing
type DummyEvent struct {
	typeStr   string
	data      interface{}
	timestamp time.Time
	source    string
}

func (e *DummyEvent) Type() string         { return e.typeStr }
func (e *DummyEvent) Data() interface{}    { return e.data }
func (e *DummyEvent) Timestamp() time.Time { return e.timestamp }
func (e *DummyEvent) Source() string       { return e.source }

func TestEventBus_SubscribePublish(t *testing.T) {
	bus := NewEventBus(nil)
	var called bool
	bus.Subscribe(EventTypeRatingCreated, func(ctx context.Context, event Event) error {
		called = true
		assert.Equal(t, EventTypeRatingCreated, event.Type())
		return nil
	})
	err := bus.Publish(context.Background(), &DummyEvent{typeStr: EventTypeRatingCreated, timestamp: time.Now()})
	assert.NoError(t, err)
	assert.True(t, called)
}

func TestEventBus_PublishNoHandlers(t *testing.T) {
	bus := NewEventBus(nil)
	err := bus.Publish(context.Background(), &DummyEvent{typeStr: "nobody.listens", timestamp: time.Now()})
	assert.NoError(t, err)
}

func TestEventBus_RetriesFailedHandler(t *testing.T) {
	bus := NewEventBusWithConfig(nil, BusConfig{MaxRetries: 2, RetryDelay: time.Millisecond})
	attempts := 0
	bus.Subscribe(EventTypeMenuUpdated, func(ctx context.Context, event Event) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	err := bus.Publish(context.Background(), &DummyEvent{typeStr: EventTypeMenuUpdated, timestamp: time.Now()})
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestEventBus_ReturnsErrorAfterExhaustedRetries(t *testing.T) {
	bus := NewEventBusWithConfig(nil, BusConfig{MaxRetries: 1, RetryDelay: time.Millisecond})
	bus.Subscribe(EventTypeSuggestionDeleted, func(ctx context.Context, event Event) error {
		return errors.New("permanent")
	})
	err := bus.Publish(context.Background(), &DummyEvent{typeStr: EventTypeSuggestionDeleted, timestamp: time.Now()})
	assert.Error(t, err)
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus(nil)
	bus.Subscribe("ev", func(ctx context.Context, event Event) error { return nil })
	assert.Equal(t, 1, bus.GetSubscriberCount("ev"))
	bus.Unsubscribe("ev")
	assert.Equal(t, 0, bus.GetSubscriberCount("ev"))
}

func TestEventBus_PublishAndForget(t *testing.T) {
	bus := NewEventBus(nil)
	var wg sync.WaitGroup
	wg.Add(1)
	bus.Subscribe("forget", func(ctx context.Context, event Event) error {
		wg.Done()
		return nil
	})
	bus.PublishAndForget(context.Background(), &DummyEvent{typeStr: "forget", timestamp: time.Now()})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for fire-and-forget event")
	}
}

func TestBasicEvent_Accessors(t *testing.T) {
	ev := NewBasicEventWithSource(EventTypeSuggestionCreated, "payload", "memory-store")
	assert.Equal(t, EventTypeSuggestionCreated, ev.Type())
	assert.Equal(t, "payload", ev.Data())
	assert.Equal(t, "memory-store", ev.Source())
	assert.WithinDuration(t, time.Now(), ev.Timestamp(), time.Second)
}

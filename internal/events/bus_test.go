package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func storeEvent(name string) *CandyStoreCreatedEvent {
	return &CandyStoreCreatedEvent{BaseEvent: NewBase(CandyStoreCreated), Name: name}
}

func TestPublishDeliversInOrder(t *testing.T) {
	bus := NewBus(zap.NewNop(), 16)

	var mu sync.Mutex
	var names []string
	bus.Subscribe(CandyStoreCreated, Typed(func(_ context.Context, e *CandyStoreCreatedEvent) error {
		mu.Lock()
		defer mu.Unlock()
		names = append(names, e.Name)
		return nil
	}))

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, bus.Publish(storeEvent(name)))
	}
	require.NoError(t, bus.Shutdown(context.Background()))

	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestPublishSyncRoutesByType(t *testing.T) {
	bus := NewBus(zap.NewNop(), 1)
	defer bus.Shutdown(context.Background())

	var typed, all int
	bus.SubscribeFunc(LaunchFailed, func(context.Context, Event) error {
		typed++
		return nil
	})
	bus.SubscribeAll(HandlerFunc(func(context.Context, Event) error {
		all++
		return nil
	}))

	ctx := context.Background()
	require.NoError(t, bus.PublishSync(ctx, &LaunchFailedEvent{BaseEvent: NewBase(LaunchFailed)}))
	require.NoError(t, bus.PublishSync(ctx, storeEvent("x")))

	assert.Equal(t, 1, typed)
	assert.Equal(t, 2, all)
}

func TestPublishSyncJoinsHandlerErrors(t *testing.T) {
	bus := NewBus(zap.NewNop(), 1)
	defer bus.Shutdown(context.Background())

	errFirst := errors.New("first")
	errSecond := errors.New("second")
	bus.SubscribeFunc(CandyStoreCreated, func(context.Context, Event) error { return errFirst })
	bus.SubscribeFunc(CandyStoreCreated, func(context.Context, Event) error { return errSecond })

	err := bus.PublishSync(context.Background(), storeEvent("x"))
	assert.ErrorIs(t, err, errFirst)
	assert.ErrorIs(t, err, errSecond)
}

func TestTypedIgnoresOtherEvents(t *testing.T) {
	called := false
	h := Typed(func(context.Context, *LaunchCompletedEvent) error {
		called = true
		return nil
	})

	require.NoError(t, h.Handle(context.Background(), storeEvent("x")))
	assert.False(t, called)
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus(zap.NewNop(), 1)
	defer bus.Shutdown(context.Background())

	calls := 0
	sub := bus.SubscribeFunc(CandyStoreCreated, func(context.Context, Event) error {
		calls++
		return nil
	})
	assert.Equal(t, 1, bus.Stats().HandlersPerType[CandyStoreCreated])

	sub.Unsubscribe()
	require.NoError(t, bus.PublishSync(context.Background(), storeEvent("x")))

	assert.Zero(t, calls)
	assert.NotContains(t, bus.Stats().HandlersPerType, CandyStoreCreated)
}

func TestPublishBufferFull(t *testing.T) {
	bus := NewBus(zap.NewNop(), 1)

	release := make(chan struct{})
	started := make(chan struct{}, 1)
	bus.SubscribeFunc(CandyStoreCreated, func(context.Context, Event) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return nil
	})

	require.NoError(t, bus.Publish(storeEvent("held")))
	<-started
	require.NoError(t, bus.Publish(storeEvent("queued")))
	assert.ErrorIs(t, bus.Publish(storeEvent("dropped")), ErrBufferFull)

	close(release)
	require.NoError(t, bus.Shutdown(context.Background()))
	assert.ErrorIs(t, bus.Publish(storeEvent("late")), ErrBusClosed)
}

func TestShutdownTimeout(t *testing.T) {
	bus := NewBus(zap.NewNop(), 1)

	release := make(chan struct{})
	defer close(release)
	started := make(chan struct{})
	bus.SubscribeFunc(CandyStoreCreated, func(context.Context, Event) error {
		close(started)
		<-release
		return nil
	})
	require.NoError(t, bus.Publish(storeEvent("held")))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, bus.Shutdown(ctx), context.DeadlineExceeded)
}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"stock-ticker-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (b *recordingBus) Publish(ctx context.Context, event events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return b.err
}

func (b *recordingBus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

func newPubSub(t *testing.T) *gochannel.GoChannel {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })
	return pubSub
}

func TestConsumerService_ForwardsToBus(t *testing.T) {
	pubSub := newPubSub(t)
	bus := &recordingBus{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := NewConsumerService(pubSub, "TICKER_RESOLVED", bus, nil)
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService("TICKER_RESOLVED", pubSub)
	require.NoError(t, publisher.PublishTickerResolved(ctx, events.TickerResolved{
		RequestID: "r-1", Symbols: []string{"BABA", "NVDA"}, Cycles: 1,
	}))

	require.Eventually(t, func() bool { return bus.count() == 1 }, time.Second, 10*time.Millisecond)

	bus.mu.Lock()
	got := bus.events[0]
	bus.mu.Unlock()
	assert.Equal(t, events.TickerResolvedType, got.EventType())
	assert.Equal(t, "r-1", got.Payload()["requestId"])
	assert.Equal(t, []string{"BABA", "NVDA"}, got.Payload()["symbols"])
}

func TestConsumerService_AcksWhenBusFails(t *testing.T) {
	pubSub := newPubSub(t)
	bus := &recordingBus{err: errors.New("nats: no responders")}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, NewConsumerService(pubSub, "T", bus, nil).Consume(ctx))
	publisher := NewPublisherService("T", pubSub)

	for i := 0; i < 3; i++ {
		require.NoError(t, publisher.PublishTickerResolved(ctx, events.TickerResolved{RequestID: "r"}))
	}
	require.Eventually(t, func() bool { return bus.count() == 3 }, time.Second, 10*time.Millisecond)
}

func TestConsumerService_DropsGarbage(t *testing.T) {
	pubSub := newPubSub(t)
	bus := &recordingBus{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, NewConsumerService(pubSub, "T", bus, nil).Consume(ctx))
	require.NoError(t, pubSub.Publish("T", message.NewMessage(watermill.NewUUID(), []byte("not json"))))
	require.NoError(t, NewPublisherService("T", pubSub).PublishTickerResolved(ctx, events.TickerResolved{RequestID: "ok"}))

	require.Eventually(t, func() bool { return bus.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestFanoutPublisher(t *testing.T) {
	ok := &recordingBus{}
	bad := &recordingBus{err: errors.New("down")}
	fan := FanoutPublisher{bad, ok}

	err := fan.Publish(context.Background(), events.TickerResolved{RequestID: "r"})
	assert.ErrorContains(t, err, "down")
	assert.Equal(t, 1, ok.count())
	assert.Equal(t, 1, bad.count())

	assert.NoError(t, FanoutPublisher{}.Publish(context.Background(), events.TickerResolved{}))
}

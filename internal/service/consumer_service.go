// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"stock-ticker-be/internal/pkg/logger"
	"stock-ticker-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// EventPublisher is the outbound bus (NATS in production).
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	bus        EventPublisher
	logger     logger.ILogger
}

// NewConsumerService forwards in-process resolution events to bus. A nil bus
// only logs them.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	bus EventPublisher,
	log logger.ILogger,
) IConsumerService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		bus:        bus,
		logger:     log,
	}
}

// Consume subscribes and processes messages in the background until ctx ends.
func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var event events.TickerResolved
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		cs.logger.Error("events", "Failed to unmarshal message", map[string]interface{}{
			"messageId": msg.UUID,
			"error":     err.Error(),
		})
		msg.Ack() // invalid messages are dropped, not retried
		return
	}

	details := map[string]interface{}{
		"requestId":     event.RequestID,
		"symbols":       event.Symbols,
		"cycles":        event.Cycles,
		"lowConfidence": event.LowConfidence,
	}

	if cs.bus == nil {
		cs.logger.Info("events", "Ticker resolved", details)
		msg.Ack()
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := cs.bus.Publish(pubCtx, event); err != nil {
		details["error"] = err.Error()
		cs.logger.Warn("events", "Failed to forward event", details)
	}
	// Forwarding is best effort; a dead bus must not back up the channel.
	msg.Ack()
}

// FanoutPublisher publishes to every bus and joins their errors.
type FanoutPublisher []EventPublisher

func (f FanoutPublisher) Publish(ctx context.Context, event events.Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

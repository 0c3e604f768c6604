package kitchen

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Gabriel44svg/Dopple-bar/pkg/event"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
)

// Subscriber patches the ticket projection from POS events between polls.
// Events are best effort; the poll loop corrects anything missed.
type Subscriber struct {
	subscriber events.Subscriber
	cache      *TicketCache
	logger     aqm.Logger
}

func NewSubscriber(sub events.Subscriber, cache *TicketCache, logger aqm.Logger) *Subscriber {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Subscriber{
		subscriber: sub,
		cache:      cache,
		logger:     logger,
	}
}

func (s *Subscriber) Start(ctx context.Context) error {
	s.logger.Info("starting order event subscribers", "topics", event.OrderItemsTopic+","+event.OrderLifecycleTopic)
	if s.subscriber == nil {
		return fmt.Errorf("order event subscriber not configured")
	}
	if err := s.subscriber.Subscribe(ctx, event.OrderItemsTopic, s.HandleItemEvent); err != nil {
		return err
	}
	return s.subscriber.Subscribe(ctx, event.OrderLifecycleTopic, s.HandleLifecycleEvent)
}

// HandleItemEvent implements events.HandlerFunc for the order items topic.
func (s *Subscriber) HandleItemEvent(ctx context.Context, payload []byte) error {
	var evt event.OrderItemEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return fmt.Errorf("cannot decode order item event: %w", err)
	}

	switch evt.EventType {
	case event.EventOrderItemCreated:
		s.cache.ApplyItemCreated(evt)
	case event.EventOrderItemCancelled:
		s.cache.ApplyItemCancelled(evt)
	default:
		s.logger.Debug("ignoring order item event", "event_type", evt.EventType)
	}
	return nil
}

// HandleLifecycleEvent implements events.HandlerFunc for the order lifecycle
// topic.
func (s *Subscriber) HandleLifecycleEvent(ctx context.Context, payload []byte) error {
	var evt event.OrderLifecycleEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return fmt.Errorf("cannot decode order lifecycle event: %w", err)
	}

	switch evt.EventType {
	case event.EventOrderSent:
		s.cache.ApplyOrderSent(evt)
	case event.EventOrderReady, event.EventOrderClosed:
		// Either way the ticket has left the stations.
		s.cache.ApplyOrderGone(evt)
	case event.EventOrderPrioritized:
		s.cache.ApplyOrderPrioritized(evt)
	default:
		s.logger.Debug("ignoring order lifecycle event", "event_type", evt.EventType)
	}
	return nil
}

package order

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Gabriel44svg/Dopple-bar/pkg/event"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/google/uuid"
)

// KitchenSubscriber applies station events to the authoritative order data.
// Item toggles carry the resulting state, so replays converge; ticket
// completions drive the order to ready.
type KitchenSubscriber struct {
	subscriber events.Subscriber
	logger     aqm.Logger
	orders     OrderRepo
	items      LineItemRepo
	publisher  events.Publisher
}

func NewKitchenSubscriber(sub events.Subscriber, orders OrderRepo, items LineItemRepo, publisher events.Publisher, logger aqm.Logger) *KitchenSubscriber {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &KitchenSubscriber{
		subscriber: sub,
		logger:     logger,
		orders:     orders,
		items:      items,
		publisher:  publisher,
	}
}

func (s *KitchenSubscriber) Start(ctx context.Context) error {
	s.logger.Info("starting kitchen ticket subscriber", "topic", event.KitchenTicketsTopic)
	if s.subscriber == nil {
		return fmt.Errorf("kitchen ticket subscriber not configured")
	}
	return s.subscriber.Subscribe(ctx, event.KitchenTicketsTopic, s.Handle)
}

// Handle implements events.HandlerFunc for the kitchen tickets topic.
func (s *KitchenSubscriber) Handle(ctx context.Context, payload []byte) error {
	var probe struct {
		EventType string `json:"event_type"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return fmt.Errorf("cannot decode kitchen event: %w", err)
	}

	switch probe.EventType {
	case event.EventKitchenItemToggled:
		var evt event.KitchenItemToggledEvent
		if err := json.Unmarshal(payload, &evt); err != nil {
			return fmt.Errorf("cannot decode item toggled event: %w", err)
		}
		return s.applyItemToggled(ctx, evt)
	case event.EventKitchenTicketCompleted:
		var evt event.KitchenTicketCompletedEvent
		if err := json.Unmarshal(payload, &evt); err != nil {
			return fmt.Errorf("cannot decode ticket completed event: %w", err)
		}
		return s.applyTicketCompleted(ctx, evt)
	default:
		s.logger.Debug("ignoring kitchen event", "event_type", probe.EventType)
		return nil
	}
}

func (s *KitchenSubscriber) applyItemToggled(ctx context.Context, evt event.KitchenItemToggledEvent) error {
	itemID, err := uuid.Parse(evt.ItemID)
	if err != nil {
		return fmt.Errorf("invalid item id %q: %w", evt.ItemID, err)
	}

	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return fmt.Errorf("cannot load line item: %w", err)
	}
	if item == nil || !item.Active() {
		s.logger.Debug("toggle for missing or cancelled item", "item_id", evt.ItemID)
		return nil
	}

	if item.Prepared == evt.Prepared {
		return nil
	}

	item.SetPrepared(evt.Prepared)
	if err := s.items.Update(ctx, item); err != nil {
		return fmt.Errorf("cannot update line item: %w", err)
	}

	s.logger.Info("item preparation toggled", "item_id", evt.ItemID, "prepared", evt.Prepared, "station", evt.Station)
	return nil
}

func (s *KitchenSubscriber) applyTicketCompleted(ctx context.Context, evt event.KitchenTicketCompletedEvent) error {
	orderID, err := uuid.Parse(evt.OrderID)
	if err != nil {
		return fmt.Errorf("invalid order id %q: %w", evt.OrderID, err)
	}

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return fmt.Errorf("cannot load order: %w", err)
	}
	if order == nil {
		s.logger.Debug("ticket completed for missing order", "order_id", evt.OrderID)
		return nil
	}

	wasReady := order.Status == StatusReady
	if err := order.MarkReady(); err != nil {
		s.logger.Debug("cannot mark order ready", "order_id", evt.OrderID, "status", order.Status, "error", err)
		return nil
	}
	if wasReady {
		return nil
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return fmt.Errorf("cannot update order: %w", err)
	}

	s.publishReady(ctx, order)
	s.logger.Info("order marked ready", "order_id", evt.OrderID, "folio", order.Folio)
	return nil
}

func (s *KitchenSubscriber) publishReady(ctx context.Context, order *Order) {
	if s.publisher == nil {
		return
	}

	evt := event.OrderLifecycleEvent{
		EventType:  event.EventOrderReady,
		OccurredAt: order.UpdatedAt.UTC(),
		OrderID:    order.ID.String(),
		OrderFolio: order.Folio,
		Status:     order.Status,
		TableName:  order.TableName,
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		s.logger.Error("cannot marshal order ready event", "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, event.OrderLifecycleTopic, payload); err != nil {
		s.logger.Error("cannot publish order ready event", "error", err)
	}
}

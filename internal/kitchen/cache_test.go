package kitchen

import (
	"testing"
	"time"

	"github.com/Gabriel44svg/Dopple-bar/pkg/event"
	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

func ticket(folio string, priority bool, createdAt time.Time, items ...TicketItem) *Ticket {
	return &Ticket{
		OrderID:   uuid.New(),
		Folio:     folio,
		Status:    "sent_to_kitchen",
		Priority:  priority,
		CreatedAt: createdAt,
		Items:     items,
	}
}

func ticketItem(name, station string, prepared bool) TicketItem {
	return TicketItem{
		ItemID:      uuid.New(),
		ProductName: name,
		Station:     station,
		Prepared:    prepared,
	}
}

func TestTicketsForStation(t *testing.T) {
	cache := NewTicketCache(aqm.NewNoopLogger())
	base := time.Now()

	older := ticket("ORD-1", false, base.Add(-10*time.Minute), ticketItem("Burger", "kitchen", false))
	newer := ticket("ORD-2", false, base, ticketItem("Fries", "kitchen", false))
	rushed := ticket("ORD-3", true, base.Add(-time.Minute), ticketItem("Steak", "kitchen", false))
	barOnly := ticket("ORD-4", false, base, ticketItem("Beer", "bar", false))

	cache.ReplaceAll([]*Ticket{older, newer, rushed, barOnly})

	got := cache.TicketsForStation("kitchen")
	if len(got) != 3 {
		t.Fatalf("TicketsForStation(kitchen) returned %d tickets, want 3", len(got))
	}
	if got[0].Folio != "ORD-3" {
		t.Errorf("first ticket = %q, want prioritized ORD-3", got[0].Folio)
	}
	if got[1].Folio != "ORD-1" {
		t.Errorf("second ticket = %q, want oldest ORD-1", got[1].Folio)
	}

	bar := cache.TicketsForStation("bar")
	if len(bar) != 1 || bar[0].Folio != "ORD-4" {
		t.Errorf("TicketsForStation(bar) = %v, want only ORD-4", bar)
	}
}

func TestToggleFlipsAndConverges(t *testing.T) {
	cache := NewTicketCache(aqm.NewNoopLogger())
	tk := ticket("ORD-1", false, time.Now(), ticketItem("Burger", "kitchen", false))
	cache.ReplaceAll([]*Ticket{tk})

	itemID := tk.Items[0].ItemID

	item, orderID, ok := cache.Toggle(itemID)
	if !ok {
		t.Fatal("Toggle() should find the item")
	}
	if !item.Prepared {
		t.Error("first toggle should mark prepared")
	}
	if orderID != tk.OrderID {
		t.Errorf("Toggle() orderID = %v, want %v", orderID, tk.OrderID)
	}

	item, _, _ = cache.Toggle(itemID)
	if item.Prepared {
		t.Error("second toggle should return to not prepared")
	}

	if _, _, ok := cache.Toggle(uuid.New()); ok {
		t.Error("Toggle() on unknown item should report not found")
	}
}

func TestSummaryAggregatesPendingByProduct(t *testing.T) {
	cache := NewTicketCache(aqm.NewNoopLogger())
	cache.ReplaceAll([]*Ticket{
		ticket("ORD-1", false, time.Now(),
			ticketItem("Burger", "kitchen", false),
			ticketItem("Burger", "kitchen", false),
			ticketItem("Fries", "kitchen", true),
		),
		ticket("ORD-2", false, time.Now(),
			ticketItem("Burger", "kitchen", false),
			ticketItem("Beer", "bar", false),
		),
	})

	rows := cache.Summary("kitchen")
	if len(rows) != 1 {
		t.Fatalf("Summary(kitchen) returned %d rows, want 1 (prepared and other stations excluded)", len(rows))
	}
	if rows[0].ProductName != "Burger" || rows[0].Pending != 3 {
		t.Errorf("Summary(kitchen) = %+v, want Burger pending 3", rows[0])
	}

	all := cache.Summary("")
	if len(all) != 2 {
		t.Errorf("Summary() returned %d rows, want 2", len(all))
	}
}

func TestApplyOrderLifecycleEvents(t *testing.T) {
	cache := NewTicketCache(aqm.NewNoopLogger())
	orderID := uuid.New()

	cache.ApplyOrderSent(event.OrderLifecycleEvent{
		EventType:  event.EventOrderSent,
		OccurredAt: time.Now(),
		OrderID:    orderID.String(),
		OrderFolio: "ORD-9",
		Status:     "sent_to_kitchen",
	})
	if cache.Count() != 1 {
		t.Fatalf("cache has %d tickets after order.sent, want 1", cache.Count())
	}

	cache.ApplyItemCreated(event.OrderItemEvent{
		EventType:   event.EventOrderItemCreated,
		OrderID:     orderID.String(),
		ItemID:      uuid.New().String(),
		Seq:         1,
		ProductName: "Burger",
		Station:     "kitchen",
	})
	tk, ok := cache.Get(orderID)
	if !ok || len(tk.Items) != 1 {
		t.Fatalf("ticket items = %d, want 1 after item event", len(tk.Items))
	}

	itemID := tk.Items[0].ItemID
	cache.ApplyItemCancelled(event.OrderItemEvent{
		EventType: event.EventOrderItemCancelled,
		OrderID:   orderID.String(),
		ItemID:    itemID.String(),
	})
	tk, _ = cache.Get(orderID)
	if len(tk.Items) != 0 {
		t.Errorf("ticket items = %d, want 0 after cancellation", len(tk.Items))
	}

	cache.ApplyOrderPrioritized(event.OrderLifecycleEvent{OrderID: orderID.String()})
	tk, _ = cache.Get(orderID)
	if !tk.Priority {
		t.Error("ticket should be prioritized")
	}

	cache.ApplyOrderGone(event.OrderLifecycleEvent{OrderID: orderID.String()})
	if cache.Count() != 0 {
		t.Errorf("cache has %d tickets after order.closed, want 0", cache.Count())
	}
}

func TestApplyItemCreatedForUnknownOrderIgnored(t *testing.T) {
	cache := NewTicketCache(aqm.NewNoopLogger())

	cache.ApplyItemCreated(event.OrderItemEvent{
		EventType: event.EventOrderItemCreated,
		OrderID:   uuid.New().String(),
		ItemID:    uuid.New().String(),
	})
	if cache.Count() != 0 {
		t.Error("items for unknown orders should be left to the next poll")
	}
}

func TestApplyItemCreatedIsIdempotent(t *testing.T) {
	cache := NewTicketCache(aqm.NewNoopLogger())
	orderID := uuid.New()
	cache.ApplyOrderSent(event.OrderLifecycleEvent{OrderID: orderID.String()})

	evt := event.OrderItemEvent{
		EventType:   event.EventOrderItemCreated,
		OrderID:     orderID.String(),
		ItemID:      uuid.New().String(),
		ProductName: "Burger",
	}
	cache.ApplyItemCreated(evt)
	cache.ApplyItemCreated(evt)

	tk, _ := cache.Get(orderID)
	if len(tk.Items) != 1 {
		t.Errorf("ticket items = %d, want 1 after duplicate event", len(tk.Items))
	}
}

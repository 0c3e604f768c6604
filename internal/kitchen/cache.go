package kitchen

import (
	"sort"
	"sync"

	"github.com/Gabriel44svg/Dopple-bar/pkg/event"
	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

// TicketCache is the in-memory state behind the station displays. The poll
// loop replaces it wholesale; NATS events patch it between polls so toggles
// and new items show up without waiting for the next cycle.
type TicketCache struct {
	mu      sync.RWMutex
	tickets map[uuid.UUID]*Ticket

	logger aqm.Logger
}

func NewTicketCache(logger aqm.Logger) *TicketCache {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &TicketCache{
		tickets: make(map[uuid.UUID]*Ticket),
		logger:  logger,
	}
}

// ReplaceAll swaps the whole projection for the authoritative poll result.
func (c *TicketCache) ReplaceAll(tickets []*Ticket) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fresh := make(map[uuid.UUID]*Ticket, len(tickets))
	for _, t := range tickets {
		if t != nil {
			fresh[t.OrderID] = t
		}
	}
	c.tickets = fresh
}

// ApplyOrderSent creates an empty ticket shell for a newly sent order. The
// items arrive with the item events or the next poll, whichever is first.
func (c *TicketCache) ApplyOrderSent(evt event.OrderLifecycleEvent) {
	orderID, err := uuid.Parse(evt.OrderID)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.tickets[orderID]; ok {
		return
	}
	c.tickets[orderID] = &Ticket{
		OrderID:   orderID,
		Folio:     evt.OrderFolio,
		TableName: evt.TableName,
		Status:    evt.Status,
		CreatedAt: evt.OccurredAt,
	}
}

// ApplyOrderGone drops the ticket when the order closes.
func (c *TicketCache) ApplyOrderGone(evt event.OrderLifecycleEvent) {
	orderID, err := uuid.Parse(evt.OrderID)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tickets, orderID)
}

// ApplyOrderPrioritized flags the ticket for display sorting.
func (c *TicketCache) ApplyOrderPrioritized(evt event.OrderLifecycleEvent) {
	orderID, err := uuid.Parse(evt.OrderID)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.tickets[orderID]; ok {
		t.Priority = true
	}
}

// ApplyItemCreated appends a unit to a known ticket. Items for orders the
// cache has never seen belong to still-open orders; the poll picks them up
// once the order is sent.
func (c *TicketCache) ApplyItemCreated(evt event.OrderItemEvent) {
	orderID, err := uuid.Parse(evt.OrderID)
	if err != nil {
		return
	}
	itemID, err := uuid.Parse(evt.ItemID)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.tickets[orderID]
	if !ok {
		return
	}
	for _, it := range t.Items {
		if it.ItemID == itemID {
			return
		}
	}
	t.Items = append(t.Items, TicketItem{
		ItemID:      itemID,
		Seq:         evt.Seq,
		ProductName: evt.ProductName,
		Notes:       evt.Notes,
		Station:     evt.Station,
	})
	sort.Slice(t.Items, func(i, j int) bool {
		return t.Items[i].Seq < t.Items[j].Seq
	})
}

// ApplyItemCancelled removes the unit from its ticket.
func (c *TicketCache) ApplyItemCancelled(evt event.OrderItemEvent) {
	orderID, err := uuid.Parse(evt.OrderID)
	if err != nil {
		return
	}
	itemID, err := uuid.Parse(evt.ItemID)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.tickets[orderID]
	if !ok {
		return
	}
	for i, it := range t.Items {
		if it.ItemID == itemID {
			t.Items = append(t.Items[:i], t.Items[i+1:]...)
			return
		}
	}
}

// Toggle flips the preparation status of one item and returns the resulting
// state. The second return is false when the item is not on any ticket.
func (c *TicketCache) Toggle(itemID uuid.UUID) (TicketItem, uuid.UUID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for orderID, t := range c.tickets {
		for i := range t.Items {
			if t.Items[i].ItemID == itemID {
				t.Items[i].Prepared = !t.Items[i].Prepared
				return t.Items[i], orderID, true
			}
		}
	}
	return TicketItem{}, uuid.Nil, false
}

// Remove drops a ticket, used when the station marks it complete.
func (c *TicketCache) Remove(orderID uuid.UUID) *Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.tickets[orderID]
	delete(c.tickets, orderID)
	return t
}

// Get returns a copy of one ticket.
func (c *TicketCache) Get(orderID uuid.UUID) (Ticket, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tickets[orderID]
	if !ok {
		return Ticket{}, false
	}
	return *t, true
}

// TicketsForStation returns the display list for one station, prioritized
// tickets first, then oldest first. Tickets with no items for the station
// are skipped.
func (c *TicketCache) TicketsForStation(station string) []Ticket {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]Ticket, 0, len(c.tickets))
	for _, t := range c.tickets {
		view := t.ForStation(station)
		if len(view.Items) == 0 {
			continue
		}
		result = append(result, view)
	}
	sortTickets(result)
	return result
}

// Summary aggregates pending demand by product name across the station's
// tickets, the "how many more of X" view cooks work from.
func (c *TicketCache) Summary(station string) []DemandRow {
	c.mu.RLock()
	defer c.mu.RUnlock()

	pending := make(map[string]int)
	for _, t := range c.tickets {
		for _, it := range t.Items {
			if station != "" && it.Station != station {
				continue
			}
			if it.Prepared {
				continue
			}
			pending[it.ProductName]++
		}
	}

	rows := make([]DemandRow, 0, len(pending))
	for name, n := range pending {
		rows = append(rows, DemandRow{ProductName: name, Pending: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Pending != rows[j].Pending {
			return rows[i].Pending > rows[j].Pending
		}
		return rows[i].ProductName < rows[j].ProductName
	})
	return rows
}

// Count returns the number of cached tickets.
func (c *TicketCache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tickets)
}

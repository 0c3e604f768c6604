package kitchen

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Ticket is the KDS projection of one sent order. It mirrors the nested
// shape the POS serves and is rebuilt wholesale on every poll; events only
// patch it between polls.
type Ticket struct {
	OrderID   uuid.UUID    `json:"order_id"`
	Folio     string       `json:"folio"`
	TableName string       `json:"table_name"`
	Status    string       `json:"status"`
	Priority  bool         `json:"priority"`
	CreatedAt time.Time    `json:"created_at"`
	Items     []TicketItem `json:"items"`
}

type TicketItem struct {
	ItemID      uuid.UUID `json:"item_id"`
	Seq         int64     `json:"seq"`
	ProductName string    `json:"product_name"`
	Notes       string    `json:"notes,omitempty"`
	Station     string    `json:"station"`
	Prepared    bool      `json:"prepared"`
}

// ForStation returns a copy of the ticket narrowed to one station's items.
// An empty station keeps everything.
func (t *Ticket) ForStation(station string) Ticket {
	view := *t
	view.Items = make([]TicketItem, 0, len(t.Items))
	for _, it := range t.Items {
		if station == "" || it.Station == station {
			view.Items = append(view.Items, it)
		}
	}
	return view
}

// Pending counts items not yet marked prepared.
func (t *Ticket) Pending() int {
	n := 0
	for _, it := range t.Items {
		if !it.Prepared {
			n++
		}
	}
	return n
}

// DemandRow is one line of the station demand summary: how many units of a
// product are still pending across all visible tickets.
type DemandRow struct {
	ProductName string `json:"product_name"`
	Pending     int    `json:"pending"`
}

// sortTickets orders tickets the way the display wants them: prioritized
// first, then oldest first.
func sortTickets(tickets []Ticket) {
	sort.SliceStable(tickets, func(i, j int) bool {
		if tickets[i].Priority != tickets[j].Priority {
			return tickets[i].Priority
		}
		return tickets[i].CreatedAt.Before(tickets[j].CreatedAt)
	})
}

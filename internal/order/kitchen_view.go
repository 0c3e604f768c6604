package order

import (
	"time"

	"github.com/google/uuid"
)

// KitchenOrderView is the nested shape the KDS polls: one order with its
// active items, optionally narrowed to a single station. Cancelled items
// never reach the kitchen.
type KitchenOrderView struct {
	OrderID   uuid.UUID         `json:"order_id"`
	Folio     string            `json:"folio"`
	TableName string            `json:"table_name"`
	Status    string            `json:"status"`
	Priority  bool              `json:"priority"`
	CreatedAt time.Time         `json:"created_at"`
	Items     []KitchenItemView `json:"items"`
}

type KitchenItemView struct {
	ItemID      uuid.UUID `json:"item_id"`
	Seq         int64     `json:"seq"`
	ProductName string    `json:"product_name"`
	Notes       string    `json:"notes,omitempty"`
	Station     string    `json:"station"`
	Prepared    bool      `json:"prepared"`
}

// NewKitchenOrderView builds the view from authoritative rows. An empty
// station keeps all items.
func NewKitchenOrderView(o *Order, items []*LineItem, station string) KitchenOrderView {
	view := KitchenOrderView{
		OrderID:   o.ID,
		Folio:     o.Folio,
		TableName: o.TableName,
		Status:    o.Status,
		Priority:  o.Priority,
		CreatedAt: o.CreatedAt,
	}
	for _, it := range items {
		if !it.Active() {
			continue
		}
		if station != "" && it.Station != station {
			continue
		}
		view.Items = append(view.Items, KitchenItemView{
			ItemID:      it.ID,
			Seq:         it.Seq,
			ProductName: it.ProductName,
			Notes:       it.Notes,
			Station:     it.Station,
			Prepared:    it.Prepared,
		})
	}
	return view
}

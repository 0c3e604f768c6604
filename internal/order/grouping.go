package order

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

const defaultNoteKey = "default"

// GroupedLine is the display and pricing view of identical units: same
// product, same note. Quantity is the number of active rows behind it and
// Seqs is the append-ordered stack of those rows, newest last.
type GroupedLine struct {
	Key         string      `json:"key"`
	ProductID   uuid.UUID   `json:"product_id"`
	ProductName string      `json:"product_name"`
	Notes       string      `json:"notes,omitempty"`
	Station     string      `json:"station"`
	UnitPrice   float64     `json:"unit_price"`
	Quantity    int         `json:"quantity"`
	Seqs        []int64     `json:"seqs"`
	ItemIDs     []uuid.UUID `json:"item_ids"`
}

// GroupKey builds the grouping identity for a product and note. Items with
// different notes never merge; an empty note uses a fixed placeholder so it
// cannot collide with a literal note.
func GroupKey(productID uuid.UUID, notes string) string {
	if notes == "" {
		notes = defaultNoteKey
	}
	return fmt.Sprintf("%s-%s", productID, notes)
}

// GroupLineItems collapses raw rows into grouped lines. Cancelled rows are
// skipped entirely. Groups appear in the order their first unit was appended,
// and each group's stack is sorted by seq ascending.
func GroupLineItems(items []*LineItem) []GroupedLine {
	sorted := make([]*LineItem, 0, len(items))
	for _, it := range items {
		if it.Active() {
			sorted = append(sorted, it)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Seq < sorted[j].Seq
	})

	byKey := make(map[string]int)
	groups := make([]GroupedLine, 0, len(sorted))
	for _, it := range sorted {
		key := GroupKey(it.ProductID, it.Notes)
		idx, ok := byKey[key]
		if !ok {
			idx = len(groups)
			byKey[key] = idx
			groups = append(groups, GroupedLine{
				Key:         key,
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				Notes:       it.Notes,
				Station:     it.Station,
				UnitPrice:   it.UnitPrice,
			})
		}
		g := &groups[idx]
		g.Quantity++
		g.Seqs = append(g.Seqs, it.Seq)
		g.ItemIDs = append(g.ItemIDs, it.ID)
	}
	return groups
}

// NewestItemID returns the most recently appended unit of a group, the one a
// cancellation removes. Groups always shrink from the top of the stack.
func (g GroupedLine) NewestItemID() (uuid.UUID, error) {
	if len(g.ItemIDs) == 0 {
		return uuid.Nil, ErrEmptyGroup
	}
	return g.ItemIDs[len(g.ItemIDs)-1], nil
}

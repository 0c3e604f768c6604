package order

import (
	"testing"

	"github.com/google/uuid"
)

func item(orderID, productID uuid.UUID, seq int64, notes string, price float64) *LineItem {
	li := NewLineItem(orderID, productID)
	li.Seq = seq
	li.Notes = notes
	li.UnitPrice = price
	li.ProductName = "Burger"
	return li
}

func TestGroupKey(t *testing.T) {
	productID := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")

	tests := []struct {
		name  string
		notes string
		want  string
	}{
		{
			name:  "emptyNoteUsesPlaceholder",
			notes: "",
			want:  "550e8400-e29b-41d4-a716-446655440000-default",
		},
		{
			name:  "noteIsPartOfKey",
			notes: "no onions",
			want:  "550e8400-e29b-41d4-a716-446655440000-no onions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GroupKey(productID, tt.notes); got != tt.want {
				t.Errorf("GroupKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGroupLineItems(t *testing.T) {
	orderID := uuid.New()
	burger := uuid.New()
	beer := uuid.New()

	t.Run("differentNotesNeverMerge", func(t *testing.T) {
		items := []*LineItem{
			item(orderID, burger, 1, "", 40),
			item(orderID, burger, 2, "no onions", 40),
			item(orderID, burger, 3, "", 40),
		}

		groups := GroupLineItems(items)
		if len(groups) != 2 {
			t.Fatalf("GroupLineItems() returned %d groups, want 2", len(groups))
		}
		if groups[0].Quantity != 2 {
			t.Errorf("plain burger group quantity = %d, want 2", groups[0].Quantity)
		}
		if groups[1].Quantity != 1 {
			t.Errorf("noted burger group quantity = %d, want 1", groups[1].Quantity)
		}
	})

	t.Run("groupsKeepFirstAppendOrder", func(t *testing.T) {
		items := []*LineItem{
			item(orderID, beer, 2, "", 25),
			item(orderID, burger, 1, "", 40),
			item(orderID, beer, 3, "", 25),
		}

		groups := GroupLineItems(items)
		if len(groups) != 2 {
			t.Fatalf("GroupLineItems() returned %d groups, want 2", len(groups))
		}
		if groups[0].ProductID != burger {
			t.Errorf("first group product = %v, want burger (lowest seq first)", groups[0].ProductID)
		}
	})

	t.Run("cancelledItemsAreSkipped", func(t *testing.T) {
		cancelled := item(orderID, burger, 2, "", 40)
		cancelled.Cancel("Wrong item rung up", "mgr-1")

		items := []*LineItem{
			item(orderID, burger, 1, "", 40),
			cancelled,
			item(orderID, burger, 3, "", 40),
		}

		groups := GroupLineItems(items)
		if len(groups) != 1 {
			t.Fatalf("GroupLineItems() returned %d groups, want 1", len(groups))
		}
		if groups[0].Quantity != 2 {
			t.Errorf("group quantity = %d, want 2", groups[0].Quantity)
		}
		if got := groups[0].Seqs; len(got) != 2 || got[0] != 1 || got[1] != 3 {
			t.Errorf("group seqs = %v, want [1 3]", got)
		}
	})

	t.Run("seqStackIsAscending", func(t *testing.T) {
		items := []*LineItem{
			item(orderID, burger, 7, "", 40),
			item(orderID, burger, 2, "", 40),
			item(orderID, burger, 5, "", 40),
		}

		groups := GroupLineItems(items)
		if len(groups) != 1 {
			t.Fatalf("GroupLineItems() returned %d groups, want 1", len(groups))
		}
		got := groups[0].Seqs
		if len(got) != 3 || got[0] != 2 || got[1] != 5 || got[2] != 7 {
			t.Errorf("group seqs = %v, want [2 5 7]", got)
		}
	})
}

func TestNewestItemID(t *testing.T) {
	orderID := uuid.New()
	burger := uuid.New()

	first := item(orderID, burger, 1, "", 40)
	second := item(orderID, burger, 2, "", 40)
	third := item(orderID, burger, 3, "", 40)

	groups := GroupLineItems([]*LineItem{first, third, second})
	if len(groups) != 1 {
		t.Fatalf("GroupLineItems() returned %d groups, want 1", len(groups))
	}

	got, err := groups[0].NewestItemID()
	if err != nil {
		t.Fatalf("NewestItemID() error = %v", err)
	}
	if got != third.ID {
		t.Errorf("NewestItemID() = %v, want the highest-seq item %v", got, third.ID)
	}

	empty := GroupedLine{}
	if _, err := empty.NewestItemID(); err != ErrEmptyGroup {
		t.Errorf("NewestItemID() on empty group error = %v, want ErrEmptyGroup", err)
	}
}

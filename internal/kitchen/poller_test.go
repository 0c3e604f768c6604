package kitchen

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aquamarinepk/aqm"
)

type fakeSource struct {
	mu      sync.Mutex
	tickets []*Ticket
	err     error
	calls   int
}

func (f *fakeSource) SentOrders(ctx context.Context) ([]*Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.tickets, nil
}

func TestPollerWarmsCacheOnStart(t *testing.T) {
	cache := NewTicketCache(aqm.NewNoopLogger())
	source := &fakeSource{tickets: []*Ticket{
		ticket("ORD-1", false, time.Now(), ticketItem("Burger", "kitchen", false)),
	}}

	p := NewPoller(source, cache, time.Hour, aqm.NewNoopLogger())
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer p.Stop(context.Background())

	if cache.Count() != 1 {
		t.Errorf("cache has %d tickets after start, want 1", cache.Count())
	}
}

func TestPollerKeepsProjectionOnFailure(t *testing.T) {
	cache := NewTicketCache(aqm.NewNoopLogger())
	cache.ReplaceAll([]*Ticket{
		ticket("ORD-1", false, time.Now(), ticketItem("Burger", "kitchen", false)),
	})

	source := &fakeSource{err: fmt.Errorf("pos unreachable")}
	p := NewPoller(source, cache, time.Hour, aqm.NewNoopLogger())
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer p.Stop(context.Background())

	if cache.Count() != 1 {
		t.Errorf("failed poll emptied the cache, want previous projection kept")
	}
}

package kitchen

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
)

const defaultPollInterval = 5 * time.Second

// OrderSource provides the authoritative sent orders the projection is
// rebuilt from.
type OrderSource interface {
	SentOrders(ctx context.Context) ([]*Ticket, error)
}

// POSSource polls the point-of-sale service over HTTP.
type POSSource struct {
	client *aqm.ServiceClient
}

func NewPOSSource(posURL string) *POSSource {
	return &POSSource{
		client: aqm.NewServiceClient(posURL),
	}
}

func (s *POSSource) SentOrders(ctx context.Context) ([]*Ticket, error) {
	resp, err := s.client.Request(ctx, "GET", "/kds/orders", nil)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch kitchen orders: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("empty response from POS")
	}

	raw, err := json.Marshal(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("cannot re-encode kitchen orders: %w", err)
	}

	var tickets []*Ticket
	if err := json.Unmarshal(raw, &tickets); err != nil {
		return nil, fmt.Errorf("cannot decode kitchen orders: %w", err)
	}

	return tickets, nil
}

// Prioritize forwards a priority request to the authoritative POS order.
func (s *POSSource) Prioritize(ctx context.Context, orderID string) error {
	path := fmt.Sprintf("/orders/%s/prioritize", orderID)
	if _, err := s.client.Request(ctx, "PUT", path, nil); err != nil {
		return fmt.Errorf("cannot prioritize order: %w", err)
	}
	return nil
}

// Poller refreshes the ticket cache from the order source on a fixed
// interval. A failed poll keeps the previous projection; the display would
// rather be stale than empty.
type Poller struct {
	source   OrderSource
	cache    *TicketCache
	interval time.Duration
	logger   aqm.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(source OrderSource, cache *TicketCache, interval time.Duration, logger aqm.Logger) *Poller {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Poller{
		source:   source,
		cache:    cache,
		interval: interval,
		logger:   logger,
	}
}

func (p *Poller) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	// Warm the cache before serving; a failure here is not fatal, events
	// and the next poll will fill it.
	if err := p.refresh(ctx); err != nil {
		p.logger.Info("initial ticket poll failed, starting with empty projection", "error", err)
	}

	go p.run(runCtx)
	return nil
}

func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
		<-p.done
	}
	return nil
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.refresh(ctx); err != nil {
				p.logger.Error("ticket poll failed", "error", err)
			}
		}
	}
}

func (p *Poller) refresh(ctx context.Context) error {
	tickets, err := p.source.SentOrders(ctx)
	if err != nil {
		return err
	}
	p.cache.ReplaceAll(tickets)
	p.logger.Debug("ticket projection refreshed", "tickets", len(tickets))
	return nil
}

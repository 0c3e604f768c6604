package pkg

import (
	"context"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/nats-io/nats.go"
)

// NATSPublisher adapts a core NATS connection to the events.Publisher
// contract. Delivery is at most once.
type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("cannot connect publisher to NATS at %s: %w", url, err)
	}
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	if err := p.conn.Publish(topic, msg); err != nil {
		return fmt.Errorf("cannot publish to %s: %w", topic, err)
	}
	return nil
}

// Close drains the connection so buffered messages flush before shutdown.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// NATSSubscriber adapts a core NATS connection to the events.Subscriber
// contract. Handler failures are logged and the subscription keeps going;
// consumers are expected to self-heal from their authoritative source.
type NATSSubscriber struct {
	conn   *nats.Conn
	logger aqm.Logger
}

func NewNATSSubscriber(url string, logger aqm.Logger) (*NATSSubscriber, error) {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("cannot connect subscriber to NATS at %s: %w", url, err)
	}
	return &NATSSubscriber{conn: conn, logger: logger}, nil
}

func (s *NATSSubscriber) Subscribe(ctx context.Context, topic string, handler events.HandlerFunc) error {
	_, err := s.conn.Subscribe(topic, func(msg *nats.Msg) {
		if err := handler(ctx, msg.Data); err != nil {
			s.logger.Error("event handler failed", "topic", topic, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("cannot subscribe to %s: %w", topic, err)
	}
	return nil
}

func (s *NATSSubscriber) Close() error {
	return s.conn.Drain()
}

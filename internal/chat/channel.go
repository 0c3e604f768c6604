package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Gabriel44svg/Dopple-bar/pkg/event"
	"github.com/aquamarinepk/aqm"
	"github.com/nats-io/nats.go"
)

const (
	reconnectDelay = 3 * time.Second
	maxLogEntries  = 200
)

// Channel is a best-effort room chat between the counter and a station.
// Delivery is at most once: messages sent while the broker is unreachable
// are dropped, and each display only keeps its own local log. On disconnect
// the channel retries on a fixed delay, indefinitely.
type Channel struct {
	url    string
	room   string
	logger aqm.Logger

	mu        sync.RWMutex
	conn      *nats.Conn
	sub       *nats.Subscription
	messages  []event.ChatMessage
	connected bool

	ctx    context.Context
	cancel context.CancelFunc
}

func NewChannel(url, room string, logger aqm.Logger) *Channel {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Channel{
		url:    url,
		room:   room,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *Channel) subject() string {
	return fmt.Sprintf("%s.%s", event.ChatTopicPrefix, c.room)
}

// Start begins connecting in the background; it never blocks startup on the
// broker being up.
func (c *Channel) Start(ctx context.Context) error {
	c.logger.Info("starting chat channel", "room", c.room)
	go c.connectLoop()
	return nil
}

func (c *Channel) Stop(ctx context.Context) error {
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sub != nil {
		_ = c.sub.Unsubscribe()
		c.sub = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connected = false
	return nil
}

func (c *Channel) connectLoop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		if err := c.connect(); err != nil {
			c.logger.Info("chat connection failed, retrying", "room", c.room, "error", err, "retry_in", reconnectDelay)
			select {
			case <-c.ctx.Done():
				return
			case <-time.After(reconnectDelay):
			}
			continue
		}

		// Wait for the connection to drop, then loop back to reconnect.
		conn := c.currentConn()
		for conn != nil && conn.IsConnected() {
			select {
			case <-c.ctx.Done():
				return
			case <-time.After(time.Second):
			}
		}

		c.markDisconnected()
		c.logger.Info("chat connection lost, reconnecting", "room", c.room, "retry_in", reconnectDelay)
		select {
		case <-c.ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (c *Channel) connect() error {
	conn, err := nats.Connect(c.url, nats.RetryOnFailedConnect(false))
	if err != nil {
		return fmt.Errorf("cannot connect to NATS: %w", err)
	}

	sub, err := conn.Subscribe(c.subject(), func(msg *nats.Msg) {
		c.receive(msg.Data)
	})
	if err != nil {
		conn.Close()
		return fmt.Errorf("cannot subscribe to chat room: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.sub = sub
	c.connected = true
	c.mu.Unlock()

	c.logger.Info("chat channel connected", "room", c.room)
	return nil
}

func (c *Channel) currentConn() *nats.Conn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn
}

func (c *Channel) markDisconnected() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.sub = nil
	c.connected = false
}

// Connected reports whether the channel can currently deliver.
func (c *Channel) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Send publishes a message to the room. It fails outright when disconnected;
// nothing is queued for later.
func (c *Channel) Send(ctx context.Context, sender, body string) (event.ChatMessage, error) {
	msg := event.ChatMessage{
		EventType:  event.EventChatMessage,
		OccurredAt: time.Now().UTC(),
		Room:       c.room,
		Sender:     sender,
		Body:       body,
	}

	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return msg, fmt.Errorf("chat channel disconnected")
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return msg, fmt.Errorf("cannot marshal chat message: %w", err)
	}
	if err := conn.Publish(c.subject(), payload); err != nil {
		return msg, fmt.Errorf("cannot publish chat message: %w", err)
	}

	return msg, nil
}

func (c *Channel) receive(payload []byte) {
	var msg event.ChatMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		c.logger.Debug("dropping malformed chat message", "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
	if len(c.messages) > maxLogEntries {
		c.messages = c.messages[len(c.messages)-maxLogEntries:]
	}
}

// Messages returns a snapshot of the local log, oldest first. The log only
// holds what this instance saw while connected.
func (c *Channel) Messages() []event.ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]event.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

package event

import "time"

const (
	// ChatTopicPrefix is joined with a room name, e.g. "chat.bar".
	ChatTopicPrefix  = "chat"
	EventChatMessage = "chat.message"
)

// ChatMessage is a best-effort broadcast between terminals. Delivery is
// at-most-once; each client keeps its own local log and logs are never
// reconciled.
type ChatMessage struct {
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	Room       string    `json:"room"`
	Sender     string    `json:"sender"`
	Body       string    `json:"body"`
}

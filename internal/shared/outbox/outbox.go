package outbox

import "time"

// Message is an outbound effect row persisted inside the same write boundary
// as the state change that queued it. Worker relays read pending rows in
// insertion order and publish them to the message bus, preserving the FIFO
// ordering of effects queued by a single operation.
type Message struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	Status       string // pending, sent
	CreatedAt    time.Time
	SentAt       *time.Time
}

const (
	StatusPending = "pending"
	StatusSent    = "sent"
)

package v1

import (
	"encoding/json"
	"time"
)

// Envelope is the canonical, versioned envelope for every outbound effect the
// protocol queues: value transfers, cross-ledger transfer requests, balance
// callbacks and listing lifecycle events. Effects are persisted to a module
// outbox in the same write boundary as local state and relayed afterwards, so
// the envelope is the unit of atomicity between storage and messaging.
// This package is generated-contract-only and must stay backward compatible.
type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

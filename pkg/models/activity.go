package models

import (
	"encoding/json"
	"time"
)

// Activity is one recorded flywheel event: a workflow build, a generation or
// an action taken on Twitter.
type Activity struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Key        string          `json:"key"`
	Summary    string          `json:"summary"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

package workflow

import "github.com/google/uuid"

// IDSource hands out identifiers for nodes, webhooks and document versions.
// Identifiers only need to be unique within one document.
type IDSource interface {
	NewID() string
}

// UUIDSource generates random version 4 UUIDs. It is safe for concurrent use.
type UUIDSource struct{}

func (UUIDSource) NewID() string {
	return uuid.NewString()
}

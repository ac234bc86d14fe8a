// Package cache keeps Twitter user ids that are expensive to look up: the
// authenticated account's id and handle-to-id resolutions.
package cache

import (
	"context"
	"strings"
	"time"
)

// DefaultTTL bounds how long a resolved user id is trusted.
const DefaultTTL = 24 * time.Hour

// UserIDs is a key/value store for user ids.
type UserIDs interface {
	// Get returns the cached id and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// MeKey is the key of the authenticated account's id.
const MeKey = "me"

// HandleKey is the key of a handle lookup. Handles are case-insensitive and
// may carry a leading "@".
func HandleKey(handle string) string {
	return "handle:" + strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}

package twitter

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukex/flywheel/pkg/cache"
	gotwitter "github.com/g8rswimmer/go-twitter/v2"
)

// currentUserID returns the authenticated account's id.
func (c *Client) currentUserID(ctx context.Context) (string, error) {
	return c.cachedID(ctx, cache.MeKey, func(ctx context.Context) (string, error) {
		me, err := c.api.AuthUserLookup(ctx, gotwitter.UserLookupOpts{})
		if err != nil {
			return "", fmt.Errorf("failed to fetch current user: %w", apiError(err))
		}

		return firstUserID(me), nil
	})
}

// UserIDByHandle resolves a handle, with or without its leading "@".
func (c *Client) UserIDByHandle(ctx context.Context, handle string) (string, error) {
	username := strings.TrimPrefix(strings.TrimSpace(handle), "@")

	return c.cachedID(ctx, cache.HandleKey(username), func(ctx context.Context) (string, error) {
		user, err := c.api.UserNameLookup(ctx, []string{username}, gotwitter.UserLookupOpts{})
		if err != nil {
			return "", fmt.Errorf("failed to look up @%s: %w", username, apiError(err))
		}

		// Unknown handles come back as 200 with only an errors array.
		id := firstUserID(user)
		if id == "" {
			return "", fmt.Errorf("%w: @%s", ErrUserNotFound, username)
		}

		return id, nil
	})
}

func firstUserID(response *gotwitter.UserLookupResponse) string {
	if response == nil || response.Raw == nil || len(response.Raw.Users) == 0 || response.Raw.Users[0] == nil {
		return ""
	}

	return response.Raw.Users[0].ID
}

// cachedID serves key from the cache, falling back to lookup. Cache failures
// are logged and never fail the call.
func (c *Client) cachedID(ctx context.Context, key string, lookup func(context.Context) (string, error)) (string, error) {
	id, found, err := c.userIDs.Get(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "User id cache read failed", "key", key, "error", err)
	} else if found {
		return id, nil
	}

	id, err = lookup(ctx)
	if err != nil {
		return "", err
	}

	if id == "" {
		return "", fmt.Errorf("%w: no user id for %s", ErrUnexpectedResponse, key)
	}

	if err := c.userIDs.Set(ctx, key, id); err != nil {
		c.logger.WarnContext(ctx, "User id cache write failed", "key", key, "error", err)
	}

	return id, nil
}

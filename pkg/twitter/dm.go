package twitter

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dukex/flywheel/pkg/otelhelper"
	"go.opentelemetry.io/otel/attribute"
)

type DirectMessageRequest struct {
	RecipientHandle string
	RecipientID     string
	Message         string
}

type DirectMessageResult struct {
	RecipientID    string `json:"recipientId"`
	ConversationID string `json:"dmConversationId,omitempty"`
	EventID        string `json:"dmEventId,omitempty"`
}

// SendDirectMessage sends one message. An explicit recipient id wins over
// the handle, which is resolved through the user id cache.
func (c *Client) SendDirectMessage(ctx context.Context, req DirectMessageRequest) (*DirectMessageResult, error) {
	ctx, span := otelhelper.StartSpan(ctx, c.tracer, "twitter.SendDirectMessage",
		attribute.Int(otelhelper.RecipientCountKey, 1))
	defer span.End()

	recipientID := req.RecipientID
	if recipientID == "" && req.RecipientHandle != "" {
		id, err := c.UserIDByHandle(ctx, req.RecipientHandle)
		if err != nil {
			otelhelper.SetError(span, err)

			return nil, err
		}

		recipientID = id
	}

	if recipientID == "" {
		return nil, ErrRecipientMissing
	}

	sent, err := c.postJSON(ctx, c.apiURL("/2/dm_conversations/with/"+url.PathEscape(recipientID)+"/messages"),
		map[string]any{"text": req.Message})
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("direct message to %s failed: %w", recipientID, err)
	}

	return &DirectMessageResult{
		RecipientID:    recipientID,
		ConversationID: sent.Get("data.dm_conversation_id").String(),
		EventID:        sent.Get("data.dm_event_id").String(),
	}, nil
}

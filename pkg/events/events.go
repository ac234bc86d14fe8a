// Package events defines the activity events the flywheel service emits.
package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type EventType string

// Topic carries every flywheel event.
const Topic = "flywheel.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	WorkflowBuiltEvent       EventType = "workflow.built"
	ContentGeneratedEvent    EventType = "content.generated"
	TweetPublishedEvent      EventType = "tweet.published"
	EngagementPerformedEvent EventType = "engagement.performed"
	DirectMessageSentEvent   EventType = "dm.sent"
)

// Types lists every event type, in the order they occur in a flywheel run.
var Types = []EventType{
	WorkflowBuiltEvent,
	ContentGeneratedEvent,
	TweetPublishedEvent,
	EngagementPerformedEvent,
	DirectMessageSentEvent,
}

// Event is implemented by every event in this package.
type Event interface {
	GetType() EventType
	Envelope() BaseEvent
	Summary() string
}

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func NewBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Metadata:  make(map[string]any),
	}
}

func (b BaseEvent) Envelope() BaseEvent {
	return b
}

type WorkflowBuilt struct {
	BaseEvent

	VersionID         string `json:"version_id"`
	Name              string `json:"name"`
	FormPath          string `json:"form_path"`
	DownloadName      string `json:"download_name"`
	IncludeEngagement bool   `json:"include_engagement"`
	IncludeDM         bool   `json:"include_dm"`
}

func (e WorkflowBuilt) GetType() EventType {
	return WorkflowBuiltEvent
}

func (e WorkflowBuilt) Summary() string {
	return fmt.Sprintf("built workflow %q (%s)", e.Name, e.DownloadName)
}

type ContentGenerated struct {
	BaseEvent

	Topic             string   `json:"topic"`
	Niche             string   `json:"niche"`
	Tone              string   `json:"tone"`
	ThreadLength      int      `json:"thread_length"`
	HasImage          bool     `json:"has_image"`
	EngagementTargets []string `json:"engagement_targets,omitempty"`
}

func (e ContentGenerated) GetType() EventType {
	return ContentGeneratedEvent
}

func (e ContentGenerated) Summary() string {
	summary := fmt.Sprintf("generated %s content about %q for %s", e.Tone, e.Topic, e.Niche)
	if e.HasImage {
		summary += " with image"
	}

	return summary
}

type TweetPublished struct {
	BaseEvent

	TweetID   string   `json:"tweet_id"`
	Text      string   `json:"text"`
	MediaID   string   `json:"media_id,omitempty"`
	ThreadIDs []string `json:"thread_ids,omitempty"`
}

func (e TweetPublished) GetType() EventType {
	return TweetPublishedEvent
}

func (e TweetPublished) Summary() string {
	if len(e.ThreadIDs) > 0 {
		return fmt.Sprintf("published tweet %s with a %d-tweet thread", e.TweetID, len(e.ThreadIDs))
	}

	return "published tweet " + e.TweetID
}

// EngagementAction is one like, retweet or reply applied to a tweet.
type EngagementAction struct {
	Action  string `json:"action"`
	TweetID string `json:"tweet_id"`
	Query   string `json:"query,omitempty"`
}

type EngagementPerformed struct {
	BaseEvent

	Actions []EngagementAction `json:"actions"`
}

func (e EngagementPerformed) GetType() EventType {
	return EngagementPerformedEvent
}

func (e EngagementPerformed) Summary() string {
	counts := map[string]int{}
	order := []string{}

	for _, action := range e.Actions {
		if counts[action.Action] == 0 {
			order = append(order, action.Action)
		}

		counts[action.Action]++
	}

	if len(order) == 0 {
		return "no engagement targets found"
	}

	parts := make([]string, 0, len(order))
	for _, action := range order {
		parts = append(parts, fmt.Sprintf("%s x%d", action, counts[action]))
	}

	return "engaged: " + strings.Join(parts, ", ")
}

type DirectMessageSent struct {
	BaseEvent

	RecipientIDs []string `json:"recipient_ids"`
}

func (e DirectMessageSent) GetType() EventType {
	return DirectMessageSentEvent
}

func (e DirectMessageSent) Summary() string {
	return fmt.Sprintf("sent direct message to %d recipient(s)", len(e.RecipientIDs))
}

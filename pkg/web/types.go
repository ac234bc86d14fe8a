// Package web provides HTTP request and response types for the flywheel API.
package web

import (
	"github.com/dukex/flywheel/pkg/generator"
	"github.com/dukex/flywheel/pkg/services"
	"github.com/dukex/flywheel/pkg/twitter"
	"github.com/dukex/flywheel/pkg/workflow"
)

const defaultTone = "professional"

// GenerateRequest is the creative brief sent to POST /api/generate.
type GenerateRequest struct {
	Topic        string   `json:"topic"                  validate:"required,min=3"`
	Niche        string   `json:"niche"                  validate:"required,min=3"`
	Tone         string   `json:"tone"                   validate:"required,tone"`
	CallToAction string   `json:"callToAction,omitempty"`
	IncludeImage bool     `json:"includeImage"`
	BrandVoice   string   `json:"brandVoice,omitempty"`
	Hashtags     []string `json:"hashtags,omitempty"`
}

func (r GenerateRequest) toGeneratorRequest() generator.Request {
	return generator.Request{
		Topic:        r.Topic,
		Niche:        r.Niche,
		Tone:         r.Tone,
		CallToAction: r.CallToAction,
		IncludeImage: r.IncludeImage,
		BrandVoice:   r.BrandVoice,
		Hashtags:     r.Hashtags,
	}
}

// WorkflowRequest configures POST /api/workflow. Omitted flags default to
// true.
type WorkflowRequest struct {
	WorkflowName          string   `json:"workflowName"          validate:"required,min=3"`
	FormPath              string   `json:"formPath"              validate:"required,formpath"`
	OpenAICredentialName  string   `json:"openAiCredentialName"  validate:"required,min=2"`
	TwitterCredentialName string   `json:"twitterCredentialName" validate:"required,min=2"`
	Tone                  *string  `json:"tone"`
	IncludeImage          *bool    `json:"includeImage"`
	IncludeEngagement     *bool    `json:"includeEngagement"`
	IncludeDM             *bool    `json:"includeDm"`
	EngagementHashtags    []string `json:"engagementHashtags"`
	DMHandles             []string `json:"dmHandles"`
}

// ApplyDefaults fills the tone and list fields left out of the request. An
// explicit empty tone is kept.
func (r *WorkflowRequest) ApplyDefaults() {
	if r.Tone == nil {
		tone := defaultTone
		r.Tone = &tone
	}

	if r.EngagementHashtags == nil {
		r.EngagementHashtags = []string{}
	}

	if r.DMHandles == nil {
		r.DMHandles = []string{}
	}
}

func (r WorkflowRequest) Options() workflow.Options {
	return workflow.Options{
		WorkflowName:          r.WorkflowName,
		FormPath:              r.FormPath,
		OpenAICredentialName:  r.OpenAICredentialName,
		TwitterCredentialName: r.TwitterCredentialName,
		Tone:                  stringOr(r.Tone, defaultTone),
		IncludeImage:          boolOrTrue(r.IncludeImage),
		IncludeEngagement:     boolOrTrue(r.IncludeEngagement),
		IncludeDM:             boolOrTrue(r.IncludeDM),
		EngagementHashtags:    r.EngagementHashtags,
		DMHandles:             r.DMHandles,
	}
}

func boolOrTrue(value *bool) bool {
	return value == nil || *value
}

func stringOr(value *string, fallback string) string {
	if value == nil {
		return fallback
	}

	return *value
}

type PublishRequest struct {
	Tweet       string   `json:"tweet"                 validate:"required,min=8"`
	AltText     string   `json:"altText,omitempty"`
	ImageBase64 string   `json:"imageBase64,omitempty" validate:"omitempty,base64"`
	Thread      []string `json:"thread,omitempty"      validate:"omitempty,dive,min=1"`
}

func (r PublishRequest) toTwitterRequest() twitter.PublishRequest {
	return twitter.PublishRequest{
		Tweet:       r.Tweet,
		AltText:     r.AltText,
		ImageBase64: r.ImageBase64,
		Thread:      r.Thread,
	}
}

// EngagementItem names its target by tweet id, search query or both.
type EngagementItem struct {
	TweetID     string `json:"tweetId,omitempty"     validate:"omitempty,min=6"`
	SearchQuery string `json:"searchQuery,omitempty" validate:"omitempty,min=3"`
	Limit       *int   `json:"limit,omitempty"       validate:"omitnil,min=1,max=10"`
	Action      string `json:"action"                validate:"required,oneof=like retweet reply"`
	Message     string `json:"message,omitempty"`
}

type EngageRequest struct {
	Engagements []EngagementItem `json:"engagements" validate:"required,min=1,dive"`
}

func (r EngageRequest) toTwitterRequests() []twitter.EngagementRequest {
	requests := make([]twitter.EngagementRequest, 0, len(r.Engagements))

	for _, item := range r.Engagements {
		request := twitter.EngagementRequest{
			TweetID:     item.TweetID,
			SearchQuery: item.SearchQuery,
			Action:      twitter.Action(item.Action),
			Message:     item.Message,
		}

		if item.Limit != nil {
			request.Limit = *item.Limit
		}

		requests = append(requests, request)
	}

	return requests
}

// DMRecipient needs a handle or an id.
type DMRecipient struct {
	Handle string `json:"handle,omitempty"`
	ID     string `json:"id,omitempty"`
}

type DMRequest struct {
	Message    string        `json:"message"    validate:"required,min=6"`
	Recipients []DMRecipient `json:"recipients" validate:"required,min=1,dive"`
}

func (r DMRequest) toRecipients() []services.Recipient {
	recipients := make([]services.Recipient, 0, len(r.Recipients))
	for _, recipient := range r.Recipients {
		recipients = append(recipients, services.Recipient{Handle: recipient.Handle, ID: recipient.ID})
	}

	return recipients
}

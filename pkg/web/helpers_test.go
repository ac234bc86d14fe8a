package web_test

import "github.com/dukex/flywheel/pkg/events"

func newTweetPublished(tweetID string) *events.TweetPublished {
	return &events.TweetPublished{
		BaseEvent: events.NewBaseEvent(events.TweetPublishedEvent),
		TweetID:   tweetID,
		Text:      "Agents are eating SaaS",
	}
}

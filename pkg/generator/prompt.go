package generator

import (
	"fmt"
	"strings"
)

// DefaultHashtags are used when a request carries no non-blank hashtag.
var DefaultHashtags = []string{"#AI", "#Automation", "#Marketing"}

const (
	defaultBrandVoice   = "Use concise, confident voice."
	defaultCallToAction = "Encourage replies and link clicks."
)

const systemPrompt = `You are a social media strategist specialising in Twitter growth through authentic engagement.
Respond in JSON with keys: tweet, thread (array of follow-up tweets), altText, imagePrompt, dmMessage, engagementTargets (array of search phrases).
Tweets must be 250 characters or fewer and stay consistent with user tone requests.`

// responseSchema is sent as the structured-output format and used to check
// the model's reply.
const responseSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["tweet", "thread", "altText", "dmMessage", "engagementTargets"],
  "properties": {
    "tweet": {"type": "string"},
    "thread": {"type": "array", "items": {"type": "string"}},
    "altText": {"type": "string"},
    "imagePrompt": {"type": "string"},
    "dmMessage": {"type": "string"},
    "engagementTargets": {"type": "array", "items": {"type": "string"}}
  }
}`

func hashtagsFor(requested []string) []string {
	for _, tag := range requested {
		if strings.TrimSpace(tag) != "" {
			return requested
		}
	}

	return DefaultHashtags
}

func userPrompt(req Request, hashtags []string) string {
	brandVoice := req.BrandVoice
	if brandVoice == "" {
		brandVoice = defaultBrandVoice
	}

	callToAction := req.CallToAction
	if callToAction == "" {
		callToAction = defaultCallToAction
	}

	return fmt.Sprintf(`
Topic: %s
Niche: %s
Tone: %s
Brand notes: %s
Call to action: %s
Include hashtags: %s
`, req.Topic, req.Niche, req.Tone, brandVoice, callToAction, strings.Join(hashtags, ", "))
}

// Package workflow builds n8n workflow documents for the tweet flywheel.
//
// The builder is a pure formatter: it does not validate its input, perform
// I/O or fail. Callers validate Options at the boundary.
package workflow

// Options configures a single document build.
type Options struct {
	WorkflowName          string   `json:"workflowName"`
	FormPath              string   `json:"formPath"`
	OpenAICredentialName  string   `json:"openAiCredentialName"`
	TwitterCredentialName string   `json:"twitterCredentialName"`
	Tone                  string   `json:"tone"`
	IncludeImage          bool     `json:"includeImage"`
	IncludeEngagement     bool     `json:"includeEngagement"`
	IncludeDM             bool     `json:"includeDm"`
	EngagementHashtags    []string `json:"engagementHashtags"`
	DMHandles             []string `json:"dmHandles"`
}

// Tones lists the tone values offered by the intake form.
var Tones = []string{
	"professional",
	"playful",
	"informative",
	"thoughtful",
	"inspirational",
	"promotional",
	"witty",
}

package workflow

import (
	"net/http"
	"regexp"
	"strings"
	"time"
)

// DefaultBaseURL is where the HTTP-call nodes reach this service.
const DefaultBaseURL = "https://agentic-2934967b.vercel.app"

// Node names. They double as connection keys.
const (
	NameBriefForm         = "Creative Brief Form"
	NameNormalise         = "Normalise Brief"
	NameGenerate          = "AI Generate"
	NamePreparePayloads   = "Prepare Payloads"
	NamePublish           = "Publish Tweet"
	NameHydrateEngagement = "Hydrate Engagement Requests"
	NameEngagement        = "Engagement Actions"
	NamePrepareDM         = "Prepare DM"
	NameDMOutreach        = "DM Outreach"
)

const (
	httpTimeoutMillis = 60000
	downloadSuffix    = "-workflow.json"
	createdAtLayout   = "2006-01-02T15:04:05.000Z07:00"
)

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	nonAlphanumRun = regexp.MustCompile(`[^a-z0-9]+`)
)

// Builder assembles workflow documents. The zero value is not usable; use
// NewBuilder.
type Builder struct {
	ids     IDSource
	now     func() time.Time
	baseURL string
}

type Option func(*Builder)

func WithIDSource(ids IDSource) Option {
	return func(b *Builder) { b.ids = ids }
}

func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// WithBaseURL sets the service URL the HTTP-call nodes post to. A trailing
// slash is dropped.
func WithBaseURL(baseURL string) Option {
	return func(b *Builder) {
		if baseURL != "" {
			b.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		ids:     UUIDSource{},
		now:     time.Now,
		baseURL: DefaultBaseURL,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Build returns a document built with a default Builder.
func Build(opts Options) BuildResult {
	return NewBuilder().Build(opts)
}

// Build assembles the nine-node flywheel graph. Engagement and DM branch
// nodes are always emitted and only marked disabled when their feature flag
// is off, so they can be re-enabled after import.
func (b *Builder) Build(opts Options) BuildResult {
	skipEngagement := !opts.IncludeEngagement
	skipDM := !opts.IncludeDM

	form := b.formNode(opts)
	normalise := b.functionNode(NameNormalise, Position{520, 320}, normaliseCode(opts), false)
	generate := b.httpNode(NameGenerate, Position{800, 320}, "/api/generate",
		"={{ JSON.stringify($json.generateBody) }}", false)
	prepare := b.functionNode(NamePreparePayloads, Position{1080, 320}, preparePayloadsCode(), false)
	publish := b.httpNode(NamePublish, Position{1360, 220}, "/api/twitter/publish",
		"={{ JSON.stringify($json.publishBody) }}", false)
	hydrate := b.functionNode(NameHydrateEngagement, Position{1360, 420}, hydrateEngagementScript, skipEngagement)
	engage := b.httpNode(NameEngagement, Position{1640, 420}, "/api/twitter/engage",
		"={{ JSON.stringify({ engagements: $json.engagements }) }}", skipEngagement)
	prepareDM := b.functionNode(NamePrepareDM, Position{1360, 600}, prepareDMCode(opts), skipDM)
	dm := b.httpNode(NameDMOutreach, Position{1640, 600}, "/api/twitter/dm",
		"={{ JSON.stringify($json) }}", skipDM)

	connections := ConnectionMap{}
	connections.connect(form.Name, normalise.Name)
	connections.connect(normalise.Name, generate.Name)
	connections.connect(generate.Name, prepare.Name)
	connections.connect(prepare.Name, publish.Name, hydrate.Name, prepareDM.Name)
	connections.connect(hydrate.Name, engage.Name)
	connections.connect(prepareDM.Name, dm.Name)

	return BuildResult{
		Workflow: Document{
			ID:     nil,
			Name:   opts.WorkflowName,
			Active: false,
			Nodes: []Node{
				form, normalise, generate, prepare, publish,
				hydrate, engage, prepareDM, dm,
			},
			Connections: connections,
			VersionID:   b.ids.NewID(),
			Settings:    Settings{Timezone: "UTC"},
			Tags:        []Tag{{Name: "twitter"}, {Name: "ai"}},
		},
		Metadata: Metadata{
			CreatedAt:    b.now().UTC().Format(createdAtLayout),
			DownloadName: DownloadName(opts.WorkflowName),
		},
	}
}

// DownloadName derives the suggested file name for a workflow: the name
// lower-cased, every run of characters outside [a-z0-9] collapsed to one
// hyphen, and the "-workflow.json" suffix.
func DownloadName(workflowName string) string {
	return nonAlphanumRun.ReplaceAllString(strings.ToLower(workflowName), "-") + downloadSuffix
}

func (b *Builder) formNode(opts Options) Node {
	toneOptions := make([]SelectOption, 0, len(Tones))
	for _, tone := range Tones {
		toneOptions = append(toneOptions, SelectOption{Name: tone, Value: tone})
	}

	return Node{
		ID:       b.ids.NewID(),
		Name:     NameBriefForm,
		Position: Position{240, 320},
		Parameters: &FormTriggerParameters{
			FormTitle:       whitespaceRun.ReplaceAllString(opts.WorkflowName+" Brief", " "),
			FormDescription: "Collects the creative brief details (topic, niche, tone, hashtags) before invoking AI automation.",
			ResponseMode:    "onSubmit",
			Fields: []FormField{
				{
					FieldLabel:  "Topic",
					FieldName:   "topic",
					FieldType:   FieldTypeText,
					Required:    ptr(true),
					Placeholder: ptr("What should the tweet cover?"),
				},
				{
					FieldLabel:  "Niche",
					FieldName:   "niche",
					FieldType:   FieldTypeText,
					Required:    ptr(true),
					Placeholder: ptr("Audience or vertical focus"),
				},
				{
					FieldLabel:        "Tone",
					FieldName:         "tone",
					FieldType:         FieldTypeSelect,
					Required:          ptr(false),
					OptionsCollection: &OptionsCollection{Options: toneOptions},
					Default:           opts.Tone,
				},
				{
					FieldLabel: "Call To Action",
					FieldName:  "callToAction",
					FieldType:  FieldTypeTextarea,
					Required:   ptr(false),
				},
				{
					FieldLabel: "Generate Image",
					FieldName:  "generateImage",
					FieldType:  FieldTypeBoolean,
					Default:    opts.IncludeImage,
				},
				{
					FieldLabel:  "Hashtags",
					FieldName:   "hashtags",
					FieldType:   FieldTypeText,
					Required:    ptr(false),
					Placeholder: ptr("Comma separated optional hashtags"),
				},
				{
					FieldLabel:  "Engagement Searches",
					FieldName:   "engagementFilters",
					FieldType:   FieldTypeTextarea,
					Required:    ptr(false),
					Placeholder: ptr(strings.Join(opts.EngagementHashtags, ", ")),
				},
				{
					FieldLabel:  "DM Targets",
					FieldName:   "dmTargets",
					FieldType:   FieldTypeTextarea,
					Required:    ptr(false),
					Placeholder: ptr(strings.Join(opts.DMHandles, ", ")),
				},
			},
			Options: FormOptions{
				WebhookPath: opts.FormPath,
				ButtonLabel: "Generate & Launch",
			},
		},
		WebhookID: b.ids.NewID(),
	}
}

func (b *Builder) functionNode(name string, pos Position, code string, disabled bool) Node {
	return Node{
		ID:         b.ids.NewID(),
		Name:       name,
		Position:   pos,
		Parameters: &FunctionParameters{FunctionCode: code},
		Disabled:   disabled,
	}
}

func (b *Builder) httpNode(name string, pos Position, path, body string, disabled bool) Node {
	return Node{
		ID:       b.ids.NewID(),
		Name:     name,
		Position: pos,
		Parameters: &HTTPRequestParameters{
			Method:             http.MethodPost,
			URL:                b.baseURL + path,
			SendBody:           true,
			JSONParameters:     true,
			BodyParametersJSON: body,
			Options:            HTTPRequestOptions{Timeout: httpTimeoutMillis},
		},
		Disabled: disabled,
	}
}

func ptr[T any](value T) *T {
	return &value
}

// Package generator produces tweet, thread, DM and image content from a
// creative brief using the OpenAI API.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/flywheel/pkg/otelhelper"
	"github.com/sashabaranov/go-openai"
	"github.com/xeipuuv/gojsonschema"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultModel      = "gpt-4o-mini"
	DefaultImageModel = "gpt-image-1"

	schemaName  = "twitter_workflow_payload"
	temperature = 0.7
	maxTokens   = 800
)

var (
	ErrEmptyCompletion   = errors.New("OpenAI did not return any content for the tweet prompt")
	ErrInvalidCompletion = errors.New("OpenAI returned content that does not match the response schema")
)

// Completions is the part of *openai.Client the generator uses.
type Completions interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateImage(ctx context.Context, request openai.ImageRequest) (openai.ImageResponse, error)
}

type Config struct {
	Model      string
	ImageModel string
}

// Request is a creative brief.
type Request struct {
	Topic        string
	Niche        string
	Tone         string
	CallToAction string
	IncludeImage bool
	BrandVoice   string
	Hashtags     []string
}

// Result is the generated content. Thread and EngagementTargets are never nil.
type Result struct {
	Tweet             string   `json:"tweet"`
	Thread            []string `json:"thread"`
	AltText           string   `json:"altText,omitempty"`
	ImagePrompt       string   `json:"imagePrompt,omitempty"`
	ImageBase64       string   `json:"imageBase64,omitempty"`
	DMMessage         string   `json:"dmMessage"`
	EngagementTargets []string `json:"engagementTargets"`
}

type Generator struct {
	client Completions
	cfg    Config
	schema *gojsonschema.Schema
	tracer trace.Tracer
	logger *slog.Logger
}

type Option func(*Generator)

func WithTracer(tracer trace.Tracer) Option {
	return func(g *Generator) { g.tracer = tracer }
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

func New(client Completions, cfg Config, opts ...Option) (*Generator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(responseSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile response schema: %w", err)
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	if cfg.ImageModel == "" {
		cfg.ImageModel = DefaultImageModel
	}

	g := &Generator{
		client: client,
		cfg:    cfg,
		schema: schema,
		tracer: otelhelper.NoopTracer(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// Generate asks the model for content matching the brief and, when an image
// is requested and the model proposed an image prompt, renders the image.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	ctx, span := otelhelper.StartSpan(ctx, g.tracer, "generator.Generate",
		attribute.String(otelhelper.TopicKey, req.Topic),
		attribute.String(otelhelper.ToneKey, req.Tone),
		attribute.String(otelhelper.ModelKey, g.cfg.Model),
	)
	defer span.End()

	hashtags := hashtagsFor(req.Hashtags)

	content, err := g.complete(ctx, req, hashtags)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	result, err := g.decode(content)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	if req.IncludeImage && result.ImagePrompt != "" {
		image, err := g.image(ctx, result.ImagePrompt)
		if err != nil {
			otelhelper.SetError(span, err)

			return nil, err
		}

		result.ImageBase64 = image
	}

	if result.Thread == nil {
		result.Thread = []string{}
	}

	if len(result.EngagementTargets) == 0 {
		result.EngagementTargets = make([]string, 0, len(hashtags))
		for _, tag := range hashtags {
			result.EngagementTargets = append(result.EngagementTargets, tag+" conversations")
		}
	}

	g.logger.DebugContext(ctx, "Generated content",
		"topic", req.Topic,
		"thread_length", len(result.Thread),
		"has_image", result.ImageBase64 != "")

	return result, nil
}

func (g *Generator) complete(ctx context.Context, req Request, hashtags []string) (string, error) {
	completion, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(req, hashtags)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schemaName,
				Schema: json.RawMessage(responseSchema),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
		return "", ErrEmptyCompletion
	}

	return completion.Choices[0].Message.Content, nil
}

func (g *Generator) decode(content string) (*Result, error) {
	validation, err := g.schema.Validate(gojsonschema.NewStringLoader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCompletion, err)
	}

	if !validation.Valid() {
		problems := make([]string, 0, len(validation.Errors()))
		for _, resultError := range validation.Errors() {
			problems = append(problems, resultError.String())
		}

		return nil, fmt.Errorf("%w: %s", ErrInvalidCompletion, strings.Join(problems, "; "))
	}

	var result Result
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCompletion, err)
	}

	return &result, nil
}

func (g *Generator) image(ctx context.Context, prompt string) (string, error) {
	request := openai.ImageRequest{
		Prompt: prompt,
		Model:  g.cfg.ImageModel,
		N:      1,
		Size:   openai.CreateImageSize1024x1024,
	}

	// gpt-image models always answer with base64 and reject the parameter.
	if strings.HasPrefix(g.cfg.ImageModel, "dall-e") {
		request.ResponseFormat = openai.CreateImageResponseFormatB64JSON
	}

	response, err := g.client.CreateImage(ctx, request)
	if err != nil {
		return "", fmt.Errorf("image generation failed: %w", err)
	}

	if len(response.Data) == 0 {
		return "", nil
	}

	return response.Data[0].B64JSON, nil
}

package services

import (
	"context"
	"log/slog"

	"github.com/dukex/flywheel/pkg/eventbus"
	"github.com/dukex/flywheel/pkg/events"
	"github.com/dukex/flywheel/pkg/generator"
)

// ContentGenerator is implemented by *generator.Generator.
type ContentGenerator interface {
	Generate(ctx context.Context, req generator.Request) (*generator.Result, error)
}

type Content struct {
	generator ContentGenerator
	publisher eventbus.EventPublisher
	logger    *slog.Logger
}

// NewContent creates the content service. A nil generator leaves the
// service unconfigured: every call fails with ErrNotConfigured.
func NewContent(generator ContentGenerator, publisher eventbus.EventPublisher, logger *slog.Logger) *Content {
	return &Content{
		generator: generator,
		publisher: publisher,
		logger:    logger.With("service", "content"),
	}
}

func (c *Content) Generate(ctx context.Context, req generator.Request) (*generator.Result, error) {
	if c.generator == nil {
		return nil, notConfigured("generate", "OpenAI API key is missing. Set OPENAI_API_KEY.")
	}

	result, err := c.generator.Generate(ctx, req)
	if err != nil {
		return nil, vendorError("generate", err)
	}

	publishEvent(ctx, c.publisher, c.logger, "generate", &events.ContentGenerated{
		BaseEvent:         events.NewBaseEvent(events.ContentGeneratedEvent),
		Topic:             req.Topic,
		Niche:             req.Niche,
		Tone:              req.Tone,
		ThreadLength:      len(result.Thread),
		HasImage:          result.ImageBase64 != "",
		EngagementTargets: result.EngagementTargets,
	})

	return result, nil
}

package main

import (
	"context"
	"fmt"

	"github.com/dukex/flywheel/pkg/cmd"
	"github.com/dukex/flywheel/pkg/generator"
	"github.com/dukex/flywheel/pkg/log"
	"github.com/dukex/flywheel/pkg/otelhelper"
	"github.com/dukex/flywheel/pkg/services"
	"github.com/dukex/flywheel/pkg/twitter"
	"github.com/dukex/flywheel/pkg/workflow"
	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"
)

func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Persistence URL: a file path (file://) or a postgres:// connection string",
				Value:   "file://./data",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma-separated Kafka brokers",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:    "cache-url",
				Usage:   "Redis URL for the Twitter user id cache; in-memory when empty",
				Sources: cli.EnvVars("CACHE_URL"),
			},
			workerBaseURLFlag(),
			&cli.StringFlag{
				Name:    "openai-api-key",
				Usage:   "OpenAI API key; content generation is disabled without it",
				Sources: cli.EnvVars("OPENAI_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "openai-model",
				Usage:   "Chat completion model",
				Value:   generator.DefaultModel,
				Sources: cli.EnvVars("OPENAI_MODEL"),
			},
			&cli.StringFlag{
				Name:    "openai-image-model",
				Usage:   "Image generation model",
				Value:   generator.DefaultImageModel,
				Sources: cli.EnvVars("OPENAI_IMAGE_MODEL"),
			},
			&cli.StringFlag{
				Name:    "twitter-api-key",
				Sources: cli.EnvVars("TWITTER_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "twitter-api-secret",
				Sources: cli.EnvVars("TWITTER_API_SECRET"),
			},
			&cli.StringFlag{
				Name:    "twitter-access-token",
				Sources: cli.EnvVars("TWITTER_ACCESS_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "twitter-access-secret",
				Sources: cli.EnvVars("TWITTER_ACCESS_SECRET"),
			},
			&cli.BoolFlag{
				Name:    "otel",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
		},
		Action: serve,
	}
}

func serve(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))

	logger := log.WithModule("api")

	logger.InfoContext(ctx, "Initializing Flywheel API")

	tracer := otelhelper.NoopTracer()

	if command.Bool("otel") {
		t, shutdown, err := otelhelper.NewTracer(ctx, "flywheel")
		if err != nil {
			return fmt.Errorf("failed to initialize tracer: %w", err)
		}

		defer func() {
			if err := shutdown(ctx); err != nil {
				logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
			}
		}()

		tracer = t
	}

	persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return err
	}

	defer func() {
		if err := persistence.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	eventBus, err := cmd.NewEventBus(command.String("event-bus"), command.String("kafka-brokers"), logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := eventBus.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	}()

	err = services.NewActivity(persistence, logger).Register(eventBus)
	if err != nil {
		return err
	}

	err = eventBus.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to events: %w", err)
	}

	contentGenerator, err := newContentGenerator(command, tracer)
	if err != nil {
		return err
	}

	twitterClient, err := newTwitterClient(ctx, command, tracer)
	if err != nil {
		return err
	}

	if contentGenerator == nil {
		logger.WarnContext(ctx, "OPENAI_API_KEY is not set; content generation is disabled")
	}

	if twitterClient == nil {
		logger.WarnContext(ctx, "Twitter credentials are not set; Twitter routes are disabled")
	}

	api := NewAPI(
		logger,
		persistence,
		eventBus,
		workflow.NewBuilder(workflow.WithBaseURL(command.String("worker-base-url"))),
		contentGenerator,
		twitterClient,
	)

	err = api.Start(command.Int("port"))
	if err != nil {
		logger.ErrorContext(ctx, "Failed to start API server", "error", err)
	}

	return nil
}

// newContentGenerator returns a nil interface, not a typed nil, when no API
// key is configured.
func newContentGenerator(command *cli.Command, tracer trace.Tracer) (services.ContentGenerator, error) {
	g, err := cmd.NewGenerator(command.String("openai-api-key"), generator.Config{
		Model:      command.String("openai-model"),
		ImageModel: command.String("openai-image-model"),
	}, tracer, log.WithModule("generator"))
	if err != nil || g == nil {
		return nil, err
	}

	return g, nil
}

func newTwitterClient(ctx context.Context, command *cli.Command, tracer trace.Tracer) (services.Twitter, error) {
	userIDs, err := cmd.NewUserIDCache(ctx, command.String("cache-url"))
	if err != nil {
		return nil, err
	}

	client, err := cmd.NewTwitter(ctx, twitter.Config{
		APIKey:       command.String("twitter-api-key"),
		APISecret:    command.String("twitter-api-secret"),
		AccessToken:  command.String("twitter-access-token"),
		AccessSecret: command.String("twitter-access-secret"),
	}, userIDs, tracer, log.WithModule("twitter"))
	if err != nil || client == nil {
		return nil, err
	}

	return client, nil
}

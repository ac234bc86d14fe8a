package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/flywheel/pkg/cache"
	"github.com/dukex/flywheel/pkg/generator"
	"github.com/dukex/flywheel/pkg/twitter"
	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/trace"
)

// NewUserIDCache returns a Redis-backed cache for a redis:// or rediss://
// URL and an in-memory one when cacheURL is empty.
func NewUserIDCache(ctx context.Context, cacheURL string) (cache.UserIDs, error) {
	if cacheURL == "" {
		return cache.NewMemory(cache.DefaultTTL), nil
	}

	client, err := cache.Connect(ctx, cacheURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to cache: %w", err)
	}

	return cache.NewRedis(client, serviceName+":twitter:", cache.DefaultTTL), nil
}

// NewGenerator returns nil without an API key, which leaves content
// generation unconfigured.
func NewGenerator(apiKey string, cfg generator.Config, tracer trace.Tracer, logger *slog.Logger) (*generator.Generator, error) {
	if apiKey == "" {
		return nil, nil
	}

	return generator.New(openai.NewClient(apiKey), cfg,
		generator.WithTracer(tracer),
		generator.WithLogger(logger))
}

// NewTwitter returns nil when any OAuth credential is missing.
func NewTwitter(
	ctx context.Context,
	cfg twitter.Config,
	userIDs cache.UserIDs,
	tracer trace.Tracer,
	logger *slog.Logger,
) (*twitter.Client, error) {
	if !cfg.Configured() {
		return nil, nil
	}

	return twitter.NewClient(ctx, cfg,
		twitter.WithUserIDCache(userIDs),
		twitter.WithTracer(tracer),
		twitter.WithLogger(logger))
}

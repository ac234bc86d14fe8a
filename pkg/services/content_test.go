package services

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/dukex/flywheel/pkg/events"
	"github.com/dukex/flywheel/pkg/generator"
	"github.com/dukex/flywheel/pkg/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestContent_NotConfigured(t *testing.T) {
	service := NewContent(nil, nil, slog.Default())

	_, err := service.Generate(t.Context(), generator.Request{Topic: "AI agents"})
	require.Error(t, err)
	assert.True(t, IsUnavailableError(err))
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestContent_Generate(t *testing.T) {
	gen := &mocks.MockContentGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything).Return(&generator.Result{
		Tweet:             "Agents are eating SaaS",
		Thread:            []string{"1/", "2/"},
		ImageBase64:       "aGVsbG8=",
		EngagementTargets: []string{"#AI conversations"},
	}, nil)

	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, "generate", mock.AnythingOfType("*events.ContentGenerated")).Return(nil)

	result, err := NewContent(gen, bus, slog.Default()).Generate(t.Context(), generator.Request{
		Topic: "AI agents",
		Niche: "SaaS",
		Tone:  "witty",
	})
	require.NoError(t, err)
	assert.Equal(t, "Agents are eating SaaS", result.Tweet)

	event := bus.Calls[0].Arguments.Get(2).(*events.ContentGenerated)
	assert.Equal(t, "AI agents", event.Topic)
	assert.Equal(t, 2, event.ThreadLength)
	assert.True(t, event.HasImage)
}

func TestContent_GenerateFailureIsUpstream(t *testing.T) {
	gen := &mocks.MockContentGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything).Return(nil, generator.ErrEmptyCompletion)

	bus := &mocks.MockEventBus{}

	_, err := NewContent(gen, bus, slog.Default()).Generate(t.Context(), generator.Request{Topic: "AI agents"})
	require.Error(t, err)
	assert.True(t, IsUpstreamError(err))
	assert.True(t, errors.Is(err, generator.ErrEmptyCompletion))
	bus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

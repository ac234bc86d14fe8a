package generator_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukex/flywheel/pkg/generator"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCompletions struct {
	mock.Mock
}

func (m *mockCompletions) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	args := m.Called(ctx, request)

	return args.Get(0).(openai.ChatCompletionResponse), args.Error(1)
}

func (m *mockCompletions) CreateImage(ctx context.Context, request openai.ImageRequest) (openai.ImageResponse, error) {
	args := m.Called(ctx, request)

	return args.Get(0).(openai.ImageResponse), args.Error(1)
}

func completion(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
		},
	}
}

const fullPayload = `{
  "tweet": "Agents are eating SaaS",
  "thread": ["1/ why", "2/ how"],
  "altText": "a robot typing",
  "imagePrompt": "robot at a keyboard",
  "dmMessage": "Loved your take on agents",
  "engagementTargets": ["#agents hiring"]
}`

func newGenerator(t *testing.T, client generator.Completions) *generator.Generator {
	t.Helper()

	g, err := generator.New(client, generator.Config{})
	require.NoError(t, err)

	return g
}

func TestGenerate_BuildsPromptFromBrief(t *testing.T) {
	client := &mockCompletions{}
	client.On("CreateChatCompletion", mock.Anything, mock.MatchedBy(func(req openai.ChatCompletionRequest) bool {
		user := req.Messages[1].Content

		return req.Model == generator.DefaultModel &&
			req.MaxTokens == 800 &&
			req.Temperature == float32(0.7) &&
			req.ResponseFormat.JSONSchema.Name == "twitter_workflow_payload" &&
			req.Messages[0].Role == openai.ChatMessageRoleSystem &&
			strings.Contains(user, "Topic: AI agents") &&
			strings.Contains(user, "Tone: witty") &&
			strings.Contains(user, "Brand notes: Use concise, confident voice.") &&
			strings.Contains(user, "Call to action: Encourage replies and link clicks.") &&
			strings.Contains(user, "Include hashtags: #AI, #Automation, #Marketing")
	})).Return(completion(fullPayload), nil)

	result, err := newGenerator(t, client).Generate(context.Background(), generator.Request{
		Topic:    "AI agents",
		Niche:    "SaaS founders",
		Tone:     "witty",
		Hashtags: []string{" ", ""},
	})
	require.NoError(t, err)

	assert.Equal(t, "Agents are eating SaaS", result.Tweet)
	assert.Equal(t, []string{"1/ why", "2/ how"}, result.Thread)
	assert.Equal(t, "Loved your take on agents", result.DMMessage)
	assert.Equal(t, []string{"#agents hiring"}, result.EngagementTargets)
	assert.Empty(t, result.ImageBase64)
	client.AssertExpectations(t)
	client.AssertNotCalled(t, "CreateImage", mock.Anything, mock.Anything)
}

func TestGenerate_Image(t *testing.T) {
	client := &mockCompletions{}
	client.On("CreateChatCompletion", mock.Anything, mock.Anything).Return(completion(fullPayload), nil)
	client.On("CreateImage", mock.Anything, mock.MatchedBy(func(req openai.ImageRequest) bool {
		return req.Prompt == "robot at a keyboard" &&
			req.Model == generator.DefaultImageModel &&
			req.Size == openai.CreateImageSize1024x1024 &&
			req.ResponseFormat == ""
	})).Return(openai.ImageResponse{
		Data: []openai.ImageResponseDataInner{{B64JSON: "aGVsbG8="}},
	}, nil)

	result, err := newGenerator(t, client).Generate(context.Background(), generator.Request{
		Topic:        "AI agents",
		Niche:        "SaaS founders",
		Tone:         "professional",
		IncludeImage: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "aGVsbG8=", result.ImageBase64)
	client.AssertExpectations(t)
}

func TestGenerate_DallERequestsBase64(t *testing.T) {
	client := &mockCompletions{}
	client.On("CreateChatCompletion", mock.Anything, mock.Anything).Return(completion(fullPayload), nil)
	client.On("CreateImage", mock.Anything, mock.MatchedBy(func(req openai.ImageRequest) bool {
		return req.ResponseFormat == openai.CreateImageResponseFormatB64JSON
	})).Return(openai.ImageResponse{}, nil)

	g, err := generator.New(client, generator.Config{ImageModel: "dall-e-3"})
	require.NoError(t, err)

	result, err := g.Generate(context.Background(), generator.Request{Topic: "x", IncludeImage: true})
	require.NoError(t, err)
	assert.Empty(t, result.ImageBase64)
	client.AssertExpectations(t)
}

func TestGenerate_Fallbacks(t *testing.T) {
	client := &mockCompletions{}
	client.On("CreateChatCompletion", mock.Anything, mock.Anything).Return(completion(`{
		"tweet": "Short and sweet",
		"thread": [],
		"altText": "",
		"dmMessage": "hi there friend",
		"engagementTargets": []
	}`), nil)

	result, err := newGenerator(t, client).Generate(context.Background(), generator.Request{
		Topic:        "AI agents",
		IncludeImage: true,
		Hashtags:     []string{"#LLM", "#Agents"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"#LLM conversations", "#Agents conversations"}, result.EngagementTargets)
	assert.NotNil(t, result.Thread)
	client.AssertNotCalled(t, "CreateImage", mock.Anything, mock.Anything)
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		response openai.ChatCompletionResponse
		err      error
		expected error
	}{
		{name: "no choices", response: openai.ChatCompletionResponse{}, expected: generator.ErrEmptyCompletion},
		{name: "blank content", response: completion("  "), expected: generator.ErrEmptyCompletion},
		{name: "not json", response: completion("sure! here is a tweet"), expected: generator.ErrInvalidCompletion},
		{name: "missing keys", response: completion(`{"tweet": "hello"}`), expected: generator.ErrInvalidCompletion},
		{name: "wrong types", response: completion(`{"tweet": 1, "thread": "x", "altText": "", "dmMessage": "", "engagementTargets": []}`), expected: generator.ErrInvalidCompletion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockCompletions{}
			client.On("CreateChatCompletion", mock.Anything, mock.Anything).Return(tt.response, tt.err)

			_, err := newGenerator(t, client).Generate(context.Background(), generator.Request{Topic: "AI agents"})
			require.ErrorIs(t, err, tt.expected)
		})
	}

	t.Run("client failure is wrapped", func(t *testing.T) {
		upstream := errors.New("rate limited")
		client := &mockCompletions{}
		client.On("CreateChatCompletion", mock.Anything, mock.Anything).Return(openai.ChatCompletionResponse{}, upstream)

		_, err := newGenerator(t, client).Generate(context.Background(), generator.Request{Topic: "AI agents"})
		require.ErrorIs(t, err, upstream)
	})
}

func TestGenerate_OpenAIClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/v1/chat/completions":
			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "json_schema", body["response_format"].(map[string]any)["type"])

			_ = json.NewEncoder(w).Encode(completion(fullPayload))
		case "/v1/images/generations":
			_, _ = w.Write([]byte(`{"created": 1, "data": [{"b64_json": "aW1n"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	config := openai.DefaultConfig("sk-test")
	config.BaseURL = server.URL + "/v1"

	g, err := generator.New(openai.NewClientWithConfig(config), generator.Config{Model: "gpt-4o"})
	require.NoError(t, err)

	result, err := g.Generate(context.Background(), generator.Request{
		Topic:        "AI agents",
		Niche:        "SaaS founders",
		Tone:         "thoughtful",
		IncludeImage: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Agents are eating SaaS", result.Tweet)
	assert.Equal(t, "aW1n", result.ImageBase64)
}

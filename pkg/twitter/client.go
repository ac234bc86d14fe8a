// Package twitter is a small Twitter (X) API client covering publishing,
// engagement and direct messages. Requests are signed with OAuth 1.0a user
// context credentials. Tweet, engagement, search and user lookups go through
// go-twitter; v1.1 media upload and v2 direct messages use the signed HTTP
// client directly.
package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/dghubble/oauth1"
	"github.com/dukex/flywheel/pkg/cache"
	"github.com/dukex/flywheel/pkg/otelhelper"
	gotwitter "github.com/g8rswimmer/go-twitter/v2"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultAPIBaseURL    = "https://api.twitter.com"
	DefaultUploadBaseURL = "https://upload.twitter.com"
)

var (
	ErrMissingCredentials   = errors.New("twitter credentials are missing; set TWITTER_API_KEY, TWITTER_API_SECRET, TWITTER_ACCESS_TOKEN and TWITTER_ACCESS_SECRET")
	ErrReplyMessageRequired = errors.New("reply action requires a message")
	ErrRecipientMissing     = errors.New("recipient information is missing; provide recipientId or recipientHandle")
	ErrUnexpectedResponse   = errors.New("unexpected twitter response")
	ErrUserNotFound         = errors.New("twitter user not found")
)

// APIError is returned for any non-2xx answer from Twitter. Detail is set
// when the answer was already decoded; otherwise it is read from Body.
type APIError struct {
	Status int
	Detail string
	Body   string
}

func (e *APIError) Error() string {
	detail := e.Detail
	if detail == "" {
		detail = gjson.Get(e.Body, "detail").String()
	}

	if detail == "" {
		detail = gjson.Get(e.Body, "errors.0.message").String()
	}

	if detail == "" {
		detail = http.StatusText(e.Status)
	}

	return fmt.Sprintf("twitter api error %d: %s", e.Status, detail)
}

func (e *APIError) HTTPStatus() int {
	return e.Status
}

type Config struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string

	APIBaseURL    string
	UploadBaseURL string
}

// Configured reports whether all four OAuth credentials are set.
func (c Config) Configured() bool {
	return c.APIKey != "" && c.APISecret != "" && c.AccessToken != "" && c.AccessSecret != ""
}

type Client struct {
	api        *gotwitter.Client
	http       *http.Client
	apiBase    string
	uploadBase string
	userIDs    cache.UserIDs
	tracer     trace.Tracer
	logger     *slog.Logger
}

type Option func(*Client)

// WithUserIDCache replaces the default in-memory user id cache.
func WithUserIDCache(userIDs cache.UserIDs) Option {
	return func(c *Client) { c.userIDs = userIDs }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) { c.tracer = tracer }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func NewClient(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	if !cfg.Configured() {
		return nil, ErrMissingCredentials
	}

	apiBase := DefaultAPIBaseURL
	if cfg.APIBaseURL != "" {
		apiBase = strings.TrimRight(cfg.APIBaseURL, "/")
	}

	uploadBase := DefaultUploadBaseURL
	if cfg.UploadBaseURL != "" {
		uploadBase = strings.TrimRight(cfg.UploadBaseURL, "/")
	}

	oauth := oauth1.NewConfig(cfg.APIKey, cfg.APISecret)
	signed := oauth.Client(ctx, oauth1.NewToken(cfg.AccessToken, cfg.AccessSecret))

	c := &Client{
		api: &gotwitter.Client{
			Authorizer: signedTransport{},
			Client:     signed,
			Host:       apiBase,
		},
		http:       signed,
		apiBase:    apiBase,
		uploadBase: uploadBase,
		userIDs:    cache.NewMemory(cache.DefaultTTL),
		tracer:     otelhelper.NoopTracer(),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// signedTransport satisfies go-twitter's Authorizer. The oauth1 transport
// already signs every request, so nothing is added here.
type signedTransport struct{}

func (signedTransport) Add(*http.Request) {}

// apiError turns go-twitter failures into *APIError so callers see a
// single error type whichever endpoint failed.
func apiError(err error) error {
	var response *gotwitter.ErrorResponse
	if errors.As(err, &response) {
		detail := response.Detail
		if detail == "" {
			detail = response.Title
		}

		return &APIError{Status: response.StatusCode, Detail: detail}
	}

	var httpErr *gotwitter.HTTPError
	if errors.As(err, &httpErr) {
		return &APIError{Status: httpErr.StatusCode}
	}

	return err
}

func (c *Client) apiURL(endpoint string) string {
	return c.apiBase + endpoint
}

func (c *Client) uploadURL(endpoint string) string {
	return c.uploadBase + endpoint
}

func (c *Client) postJSON(ctx context.Context, target string, body any) (gjson.Result, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return gjson.Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return gjson.Result{}, err
	}

	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) postForm(ctx context.Context, target string, form url.Values) (gjson.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return gjson.Result{}, err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req)
}

func (c *Client) do(req *http.Request) (gjson.Result, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("twitter request %s %s failed: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to read twitter response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.ErrorContext(req.Context(), "Twitter request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"status", resp.StatusCode)

		return gjson.Result{}, &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	if len(body) == 0 {
		return gjson.Result{}, nil
	}

	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("%w: body is not JSON", ErrUnexpectedResponse)
	}

	return gjson.ParseBytes(body), nil
}

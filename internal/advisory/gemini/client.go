// Package gemini generates advisory text with the Gemini REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/skycast/skycast/internal/provider/resilience"
)

const (
	// ProviderName identifies this provider.
	ProviderName = "gemini"

	// DefaultBaseURL is the Generative Language API base URL.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel is used when none is configured.
	DefaultModel = "gemini-2.5-flash"

	apiKeyHeader = "x-goog-api-key"
)

// ErrNoCandidates is returned when the response carries no text.
var ErrNoCandidates = errors.New("gemini: response has no candidates")

// ClientConfig holds configuration for the Gemini client.
type ClientConfig struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the model name (default: DefaultModel).
	Model string

	// BaseURL is the API base URL (optional).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client calls the generateContent endpoint.
type Client struct {
	apiKey     string
	endpoint   string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// APIError is a non-success response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gemini: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gemini: unexpected status code: %d", e.StatusCode)
}

// DefaultClientConfig is the outbound profile for the Gemini API: one retry,
// a longer timeout for generation, and a breaker that opens after three
// failures in a row.
func DefaultClientConfig() resilience.ClientConfig {
	cfg := resilience.DefaultClientConfig(ProviderName)
	cfg.Timeout = 30 * time.Second
	cfg.MaxRetries = 1
	cfg.InitialInterval = 500 * time.Millisecond
	cb := resilience.DefaultCircuitBreakerConfig(ProviderName)
	cb.Timeout = 2 * time.Minute
	cb.ReadyToTrip = resilience.TripAfterConsecutive(3)
	cfg.CircuitBreaker = &cb
	return cfg
}

// NewClient creates a new Gemini client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(DefaultClientConfig())
	}

	return &Client{
		apiKey:     cfg.APIKey,
		endpoint:   fmt.Sprintf("%s/models/%s:generateContent", baseURL, url.PathEscape(model)),
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Generate sends prompt as a single user turn and returns the concatenated
// text parts of the first candidate.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody errorResponse
		if json.NewDecoder(resp.Body).Decode(&errBody) == nil {
			apiErr.Message = errBody.Error.Message
		}
		return "", apiErr
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if len(out.Candidates) == 0 {
		return "", ErrNoCandidates
	}

	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if sb.Len() == 0 {
		return "", ErrNoCandidates
	}

	c.logger.Debug().Int("chars", sb.Len()).Msg("advisory generated")
	return sb.String(), nil
}

// Generative Language API structures.

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Package genai wraps the Gemini text-completion REST API behind a small
// client interface so the conversation gateway can be tested with a double.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/DPU-COL/learner-assist-service/internal/models"
)

// Turn is one prior exchange entry handed to the backend.
type Turn struct {
	Role    models.MessageRole
	Content string
}

// GenerationConfig holds the recognized sampling options. Zero values fall
// back to the backend defaults for that field.
type GenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
	TopP            float64 `json:"topP,omitempty"`
	TopK            int     `json:"topK,omitempty"`
}

// DefaultGenerationConfig mirrors the production sampling parameters.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		MaxOutputTokens: 2048,
		Temperature:     0.7,
		TopP:            0.95,
		TopK:            40,
	}
}

// Client is the generative backend adapter. Complete sends one turn and
// returns the generated text or a typed failure from this package.
type Client interface {
	// Complete sends instruction + prior history + the new user message.
	// History must not include the message being sent.
	Complete(ctx context.Context, instruction string, history []Turn, newMessage string) (string, error)

	// Configured reports whether a credential was resolved at construction.
	Configured() bool
}

// Typed backend failures, each mapped to a distinct user-safe fallback.
var (
	ErrNotConfigured     = errors.New("genai: backend credential not configured")
	ErrInvalidCredential = errors.New("genai: backend rejected credential")
	ErrRateLimited       = errors.New("genai: backend rate limited")
	ErrSafetyBlocked     = errors.New("genai: backend safety rejection")
)

// Config is resolved once at construction; the client never reads ambient
// state at call time.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Generation GenerationConfig
	HTTPClient *http.Client
}

type client struct {
	apiKey     string
	baseURL    string
	model      string
	generation GenerationConfig
	httpClient *http.Client
}

// NewClient builds a Gemini client. A missing API key yields a functional
// client whose Complete always returns ErrNotConfigured without any network
// call.
func NewClient(cfg Config) Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	gen := cfg.Generation
	if gen == (GenerationConfig{}) {
		gen = DefaultGenerationConfig()
	}
	return &client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    baseURL,
		model:      model,
		generation: gen,
		httpClient: httpClient,
	}
}

func (c *client) Configured() bool {
	return c.apiKey != ""
}

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Role  string         `json:"role,omitempty"`
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	SystemInstruction *generateContent  `json:"system_instruction,omitempty"`
	Contents          []generateContent `json:"contents"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      generateContent `json:"content"`
		FinishReason string          `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (c *client) Complete(ctx context.Context, instruction string, history []Turn, newMessage string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	contents := make([]generateContent, 0, len(history)+1)
	for _, turn := range history {
		role := "user"
		if turn.Role == models.MessageRoleAssistant {
			role = "model"
		}
		contents = append(contents, generateContent{
			Role:  role,
			Parts: []generatePart{{Text: turn.Content}},
		})
	}
	contents = append(contents, generateContent{
		Role:  "user",
		Parts: []generatePart{{Text: newMessage}},
	})

	reqBody := generateRequest{
		Contents:         contents,
		GenerationConfig: &c.generation,
	}
	if instruction != "" {
		reqBody.SystemInstruction = &generateContent{
			Parts: []generatePart{{Text: instruction}},
		}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("genai: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("genai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("genai: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("genai: read response: %w", err)
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("genai: decode response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.classifyHTTPError(resp.StatusCode, parsed)
	}

	if parsed.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: %s", ErrSafetyBlocked, parsed.PromptFeedback.BlockReason)
	}
	if len(parsed.Candidates) == 0 {
		return "", fmt.Errorf("genai: empty candidate list")
	}
	candidate := parsed.Candidates[0]
	if candidate.FinishReason == "SAFETY" {
		return "", fmt.Errorf("%w: candidate blocked", ErrSafetyBlocked)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String(), nil
}

func (c *client) classifyHTTPError(status int, parsed generateResponse) error {
	msg := parsed.Error.Message
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, msg)
	case status == http.StatusUnauthorized || status == http.StatusForbidden,
		strings.Contains(msg, "API_KEY_INVALID"),
		parsed.Error.Status == "PERMISSION_DENIED":
		return fmt.Errorf("%w: %s", ErrInvalidCredential, msg)
	case strings.Contains(parsed.Error.Status, "RESOURCE_EXHAUSTED"):
		return fmt.Errorf("%w: %s", ErrRateLimited, msg)
	default:
		return fmt.Errorf("genai: backend error (status %d): %s", status, msg)
	}
}

// Package anthropic implements the prim.ChatBackend contract against the
// Anthropic messages API. The API has no constrained-JSON response selector,
// so when structured output is requested the backend appends a system
// instruction demanding a bare JSON object and enforces the contract by
// parsing the reply; an unparsable reply fails at this boundary.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/zoobzio/capitan"

	"github.com/lexfold/prim"
)

// EnvAPIKey is the environment variable the credential is read from when
// Config.APIKey is empty.
const EnvAPIKey = "ANTHROPIC_API_KEY"

const jsonObjectInstruction = "Respond with a single JSON object and nothing else. " +
	"No prose, no code fences."

// Backend implements prim.ChatBackend for the Anthropic API.
type Backend struct {
	apiKey     string
	model      string
	baseURL    string
	maxTokens  int
	httpClient *http.Client
	name       string
}

// Config holds configuration for the Anthropic backend.
type Config struct {
	APIKey    string        // Optional, defaults to $ANTHROPIC_API_KEY
	Model     string        // e.g. "claude-sonnet-4-20250514"
	BaseURL   string        // Optional, defaults to "https://api.anthropic.com"
	MaxTokens int           // Optional, defaults to 4096
	Timeout   time.Duration // Optional, defaults to 30s
}

// New creates an Anthropic backend. A missing credential is a construction
// error.
func New(config Config) (*Backend, error) {
	if config.APIKey == "" {
		config.APIKey = os.Getenv(EnvAPIKey)
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("anthropic: no API key configured and %s not set", EnvAPIKey)
	}
	if config.Model == "" {
		config.Model = "claude-sonnet-4-20250514"
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.anthropic.com"
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 4096
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Backend{
		apiKey:    config.APIKey,
		model:     config.Model,
		baseURL:   config.BaseURL,
		maxTokens: config.MaxTokens,
		name:      "anthropic",
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// NewModel creates a prim.Model over an Anthropic backend for the given
// model identifier, reading the credential from $ANTHROPIC_API_KEY.
func NewModel(model string, opts ...prim.Option) (*prim.Model, error) {
	backend, err := New(Config{Model: model})
	if err != nil {
		return nil, err
	}
	return prim.New(backend, opts...), nil
}

// Name returns the backend identifier.
func (b *Backend) Name() string {
	return b.name
}

// Complete sends the messages to Anthropic and returns the reply, with its
// JSON object decoded when opts.ForceJSON is set.
func (b *Backend) Complete(ctx context.Context, messages []prim.Message, opts prim.GenerationOptions) (prim.Message, error) {
	startTime := time.Now()

	capitan.Info(ctx, prim.BackendCallStarted,
		prim.BackendKey.Field(b.name),
		prim.ModelKey.Field(b.model),
	)

	// System messages move to the top-level system field; the rest stay in
	// the conversation.
	var systemParts []string
	var apiMessages []message
	for _, msg := range messages {
		if msg.Role == prim.RoleSystem {
			systemParts = append(systemParts, msg.Content)
		} else {
			apiMessages = append(apiMessages, message{
				Role:    string(msg.Role),
				Content: msg.Content,
			})
		}
	}
	if opts.ForceJSON {
		systemParts = append(systemParts, jsonObjectInstruction)
	}

	requestBody := messagesRequest{
		Model:       b.model,
		Messages:    apiMessages,
		MaxTokens:   b.maxTokens,
		Temperature: opts.Temperature,
	}
	if len(systemParts) > 0 {
		requestBody.System = strings.Join(systemParts, "\n\n")
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return prim.Message{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", b.baseURL+"/v1/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return prim.Message{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", b.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		capitan.Error(ctx, prim.BackendCallFailed,
			prim.BackendKey.Field(b.name),
			prim.ModelKey.Field(b.model),
			prim.ErrorKey.Field(err.Error()),
		)
		return prim.Message{}, &prim.TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return prim.Message{}, &prim.TransportError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		duration := time.Since(startTime)

		fields := []capitan.Field{
			prim.BackendKey.Field(b.name),
			prim.ModelKey.Field(b.model),
			prim.HTTPStatusCodeKey.Field(resp.StatusCode),
			prim.DurationMsKey.Field(int(duration.Milliseconds())),
		}

		var errorResp errorResponse
		if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error.Message != "" {
			fields = append(fields,
				prim.ErrorKey.Field(errorResp.Error.Message),
				prim.APIErrorTypeKey.Field(errorResp.Error.Type),
			)
		} else {
			fields = append(fields, prim.ErrorKey.Field(fmt.Sprintf("status %d", resp.StatusCode)))
		}
		capitan.Error(ctx, prim.BackendCallFailed, fields...)

		return prim.Message{}, &prim.TransportError{Status: resp.StatusCode, Body: string(body)}
	}

	var messagesResp messagesResponse
	if err := json.Unmarshal(body, &messagesResp); err != nil {
		return prim.Message{}, &prim.StructuredDecodeError{Content: string(body), Err: err}
	}

	// First text block only.
	var content string
	for _, block := range messagesResp.Content {
		if block.Type == "text" {
			content = block.Text
			break
		}
	}
	if content == "" {
		return prim.Message{}, fmt.Errorf("no text content in response")
	}

	duration := time.Since(startTime)

	fields := []capitan.Field{
		prim.BackendKey.Field(b.name),
		prim.ModelKey.Field(messagesResp.Model),
		prim.PromptTokensKey.Field(messagesResp.Usage.InputTokens),
		prim.CompletionTokensKey.Field(messagesResp.Usage.OutputTokens),
		prim.TotalTokensKey.Field(messagesResp.Usage.InputTokens + messagesResp.Usage.OutputTokens),
		prim.DurationMsKey.Field(int(duration.Milliseconds())),
		prim.HTTPStatusCodeKey.Field(resp.StatusCode),
		prim.ResponseIDKey.Field(messagesResp.ID),
	}
	if messagesResp.StopReason != "" {
		fields = append(fields, prim.ResponseFinishReasonKey.Field(messagesResp.StopReason))
	}
	capitan.Info(ctx, prim.BackendCallCompleted, fields...)

	return prim.NewReply(prim.RoleAssistant, content, opts.ForceJSON)
}

// Request/Response types for the Anthropic API

type messagesRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Model      string         `json:"model"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      usage          `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type errorResponse struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

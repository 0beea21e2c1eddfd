// Package openai implements the prim.ChatBackend contract against the
// OpenAI chat completions API. Structured output is requested through the
// response_format selector ("json_object" vs "text").
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/zoobzio/capitan"

	"github.com/lexfold/prim"
)

// EnvAPIKey is the environment variable the credential is read from when
// Config.APIKey is empty.
const EnvAPIKey = "OPENAI_API_KEY"

// Backend implements prim.ChatBackend for the OpenAI API.
type Backend struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	name       string
}

// Config holds configuration for the OpenAI backend.
type Config struct {
	APIKey  string        // Optional, defaults to $OPENAI_API_KEY
	Model   string        // e.g. "gpt-4o", "gpt-4o-mini"
	BaseURL string        // Optional, defaults to "https://api.openai.com/v1"
	Timeout time.Duration // Optional, defaults to 30s
}

// New creates an OpenAI backend. The credential is resolved at construction
// time: Config.APIKey if set, otherwise $OPENAI_API_KEY. A missing
// credential is a construction error, not a runtime one.
func New(config Config) (*Backend, error) {
	if config.APIKey == "" {
		config.APIKey = os.Getenv(EnvAPIKey)
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("openai: no API key configured and %s not set", EnvAPIKey)
	}
	if config.Model == "" {
		config.Model = "gpt-4o"
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Backend{
		apiKey:  config.APIKey,
		model:   config.Model,
		baseURL: config.BaseURL,
		name:    "openai",
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// NewModel creates a prim.Model over an OpenAI backend for the given model
// identifier, reading the credential from $OPENAI_API_KEY.
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

// Complete sends the messages to OpenAI and returns the first candidate
// reply, with its JSON object decoded when opts.ForceJSON is set.
func (b *Backend) Complete(ctx context.Context, messages []prim.Message, opts prim.GenerationOptions) (prim.Message, error) {
	startTime := time.Now()

	capitan.Info(ctx, prim.BackendCallStarted,
		prim.BackendKey.Field(b.name),
		prim.ModelKey.Field(b.model),
	)

	apiMessages := make([]message, len(messages))
	for i, msg := range messages {
		apiMessages[i] = message{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	formatType := "text"
	if opts.ForceJSON {
		formatType = "json_object"
	}

	requestBody := chatCompletionRequest{
		Model:          b.model,
		Messages:       apiMessages,
		Temperature:    opts.Temperature,
		ResponseFormat: &responseFormat{Type: formatType},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return prim.Message{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", b.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return prim.Message{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

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
			if errorResp.Error.Code != "" {
				fields = append(fields, prim.APIErrorCodeKey.Field(errorResp.Error.Code))
			}
		} else {
			fields = append(fields, prim.ErrorKey.Field(fmt.Sprintf("status %d", resp.StatusCode)))
		}
		capitan.Error(ctx, prim.BackendCallFailed, fields...)

		return prim.Message{}, &prim.TransportError{Status: resp.StatusCode, Body: string(body)}
	}

	var completionResp chatCompletionResponse
	if err := json.Unmarshal(body, &completionResp); err != nil {
		return prim.Message{}, &prim.StructuredDecodeError{Content: string(body), Err: err}
	}

	if len(completionResp.Choices) == 0 {
		return prim.Message{}, fmt.Errorf("no response choices returned")
	}

	duration := time.Since(startTime)

	fields := []capitan.Field{
		prim.BackendKey.Field(b.name),
		prim.ModelKey.Field(completionResp.Model),
		prim.PromptTokensKey.Field(completionResp.Usage.PromptTokens),
		prim.CompletionTokensKey.Field(completionResp.Usage.CompletionTokens),
		prim.TotalTokensKey.Field(completionResp.Usage.TotalTokens),
		prim.DurationMsKey.Field(int(duration.Milliseconds())),
		prim.HTTPStatusCodeKey.Field(resp.StatusCode),
		prim.ResponseIDKey.Field(completionResp.ID),
	}
	if completionResp.Choices[0].FinishReason != "" {
		fields = append(fields, prim.ResponseFinishReasonKey.Field(completionResp.Choices[0].FinishReason))
	}
	capitan.Info(ctx, prim.BackendCallCompleted, fields...)

	// First candidate only; the rest are discarded.
	first := completionResp.Choices[0].Message
	return prim.NewReply(prim.Role(first.Role), first.Content, opts.ForceJSON)
}

// Request/Response types for the OpenAI API

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
	Usage   usage    `json:"usage"`
}

type choice struct {
	Index        int     `json:"index"`
	Message      message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

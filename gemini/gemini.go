// Package gemini implements the prim.ChatBackend contract against the
// Google Gemini generateContent API. Structured output is requested through
// generationConfig.responseMimeType ("application/json").
package gemini

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
const EnvAPIKey = "GEMINI_API_KEY"

// Backend implements prim.ChatBackend for the Gemini API.
type Backend struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	name       string
}

// Config holds configuration for the Gemini backend.
type Config struct {
	APIKey  string        // Optional, defaults to $GEMINI_API_KEY
	Model   string        // e.g. "gemini-1.5-flash", "gemini-1.5-pro"
	BaseURL string        // Optional, defaults to "https://generativelanguage.googleapis.com/v1beta"
	Timeout time.Duration // Optional, defaults to 30s
}

// New creates a Gemini backend. A missing credential is a construction
// error.
func New(config Config) (*Backend, error) {
	if config.APIKey == "" {
		config.APIKey = os.Getenv(EnvAPIKey)
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini: no API key configured and %s not set", EnvAPIKey)
	}
	if config.Model == "" {
		config.Model = "gemini-1.5-flash"
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Backend{
		apiKey:  config.APIKey,
		model:   config.Model,
		baseURL: config.BaseURL,
		name:    "gemini",
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// NewModel creates a prim.Model over a Gemini backend for the given model
// identifier, reading the credential from $GEMINI_API_KEY.
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

// Complete sends the messages to Gemini and returns the first candidate
// reply, with its JSON object decoded when opts.ForceJSON is set.
func (b *Backend) Complete(ctx context.Context, messages []prim.Message, opts prim.GenerationOptions) (prim.Message, error) {
	startTime := time.Now()

	capitan.Info(ctx, prim.BackendCallStarted,
		prim.BackendKey.Field(b.name),
		prim.ModelKey.Field(b.model),
	)

	// System messages move to systemInstruction; Gemini names the assistant
	// role "model".
	var systemParts []string
	var contents []content
	for _, msg := range messages {
		if msg.Role == prim.RoleSystem {
			systemParts = append(systemParts, msg.Content)
			continue
		}
		role := string(msg.Role)
		if msg.Role == prim.RoleAssistant {
			role = "model"
		}
		contents = append(contents, content{
			Role:  role,
			Parts: []part{{Text: msg.Content}},
		})
	}

	config := &generationConfig{
		Temperature: opts.Temperature,
	}
	if opts.ForceJSON {
		config.ResponseMIMEType = "application/json"
	}

	requestBody := generateContentRequest{
		Contents:         contents,
		GenerationConfig: config,
	}
	if len(systemParts) > 0 {
		requestBody.SystemInstruction = &content{
			Parts: []part{{Text: strings.Join(systemParts, "\n\n")}},
		}
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return prim.Message{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", b.baseURL, b.model, b.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return prim.Message{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

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
				prim.APIErrorTypeKey.Field(errorResp.Error.Status),
			)
		} else {
			fields = append(fields, prim.ErrorKey.Field(fmt.Sprintf("status %d", resp.StatusCode)))
		}
		capitan.Error(ctx, prim.BackendCallFailed, fields...)

		return prim.Message{}, &prim.TransportError{Status: resp.StatusCode, Body: string(body)}
	}

	var generateResp generateContentResponse
	if err := json.Unmarshal(body, &generateResp); err != nil {
		return prim.Message{}, &prim.StructuredDecodeError{Content: string(body), Err: err}
	}

	if len(generateResp.Candidates) == 0 {
		return prim.Message{}, fmt.Errorf("no candidates in response")
	}

	// First candidate, first text part.
	candidate := generateResp.Candidates[0]
	var textContent string
	for _, p := range candidate.Content.Parts {
		if p.Text != "" {
			textContent = p.Text
			break
		}
	}
	if textContent == "" {
		return prim.Message{}, fmt.Errorf("no text content in response")
	}

	duration := time.Since(startTime)

	fields := []capitan.Field{
		prim.BackendKey.Field(b.name),
		prim.ModelKey.Field(b.model),
		prim.PromptTokensKey.Field(generateResp.UsageMetadata.PromptTokenCount),
		prim.CompletionTokensKey.Field(generateResp.UsageMetadata.CandidatesTokenCount),
		prim.TotalTokensKey.Field(generateResp.UsageMetadata.TotalTokenCount),
		prim.DurationMsKey.Field(int(duration.Milliseconds())),
		prim.HTTPStatusCodeKey.Field(resp.StatusCode),
	}
	if candidate.FinishReason != "" {
		fields = append(fields, prim.ResponseFinishReasonKey.Field(candidate.FinishReason))
	}
	capitan.Info(ctx, prim.BackendCallCompleted, fields...)

	return prim.NewReply(prim.RoleAssistant, textContent, opts.ForceJSON)
}

// Request/Response types for the Gemini API

type generateContentRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"topP,omitempty"`
	TopK             int     `json:"topK,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type generateContentResponse struct {
	Candidates    []candidate   `json:"candidates"`
	UsageMetadata usageMetadata `json:"usageMetadata"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

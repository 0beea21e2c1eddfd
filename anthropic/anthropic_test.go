package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lexfold/prim"
)

func newTestBackend(t *testing.T, handler http.HandlerFunc) *Backend {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	backend, err := New(Config{
		APIKey:  "test-key",
		Model:   "claude-sonnet-4-20250514",
		BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}
	return backend
}

func messagesBody(content string) string {
	resp := map[string]any{
		"id":          "msg_123",
		"model":       "claude-sonnet-4-20250514",
		"content":     []map[string]string{{"type": "text", "text": content}},
		"stop_reason": "end_turn",
		"usage":       map[string]int{"input_tokens": 10, "output_tokens": 5},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestNew(t *testing.T) {
	t.Run("missing credential", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "")

		_, err := New(Config{})
		if err == nil {
			t.Fatal("expected error when no credential is configured")
		}
	})
}

func TestComplete(t *testing.T) {
	ctx := context.Background()
	messages := []prim.Message{
		{Role: prim.RoleSystem, Content: "system prompt"},
		{Role: prim.RoleUser, Content: "user prompt"},
	}

	t.Run("system extraction and JSON nudge", func(t *testing.T) {
		var gotRequest messagesRequest
		backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			json.Unmarshal(body, &gotRequest)
			io.WriteString(w, messagesBody(`{"score": 4}`))
		})

		opts := prim.NewOptions().ForceJSON(true).Build()
		reply, err := backend.Complete(ctx, messages, opts)
		if err != nil {
			t.Fatalf("complete failed: %v", err)
		}

		if !strings.Contains(gotRequest.System, "system prompt") {
			t.Errorf("system field missing system message: %q", gotRequest.System)
		}
		if !strings.Contains(gotRequest.System, "single JSON object") {
			t.Errorf("system field missing JSON instruction: %q", gotRequest.System)
		}
		if len(gotRequest.Messages) != 1 || gotRequest.Messages[0].Role != "user" {
			t.Errorf("messages = %+v, want user message only", gotRequest.Messages)
		}

		if reply.Object == nil {
			t.Fatal("Object missing on structured reply")
		}
	})

	t.Run("non-success status carries status and body", func(t *testing.T) {
		backend := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, "server error")
		})

		_, err := backend.Complete(ctx, messages, prim.GenerationOptions{})
		var transport *prim.TransportError
		if !errors.As(err, &transport) {
			t.Fatalf("expected TransportError, got %v", err)
		}
		if transport.Status != http.StatusInternalServerError || transport.Body != "server error" {
			t.Errorf("got status %d body %q", transport.Status, transport.Body)
		}
	})

	t.Run("unparsable structured content", func(t *testing.T) {
		backend := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
			io.WriteString(w, messagesBody("prose, not JSON"))
		})

		opts := prim.NewOptions().ForceJSON(true).Build()
		_, err := backend.Complete(ctx, messages, opts)
		var decode *prim.StructuredDecodeError
		if !errors.As(err, &decode) {
			t.Fatalf("expected StructuredDecodeError, got %v", err)
		}
	})
}

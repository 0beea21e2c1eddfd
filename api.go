// Package prim provides typed natural-language primitives over remote chat models.
//
// Prim turns high-level requests into deterministic chat message sequences,
// sends them through a pluggable backend, and decodes the structured JSON the
// model returns into typed Go values. It exposes six primitives:
//
//   - Classify: pick one choice from an ordered set, returned as its index
//   - BinaryClassify: true/false decision
//   - GenerateText: free-text generation, reply returned verbatim
//   - ScoreInt / ScoreFloat: bounded numeric scoring
//   - Parse: schema-guided structured parsing into a Go struct
//
// Each primitive issues exactly one request and returns a typed error on
// failure. There is no retry, no streaming, and no conversation state; the
// facade is stateless and safe for concurrent use.
//
// Basic usage:
//
//	model, err := openai.NewModel("gpt-4o")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	index, err := model.Classify(ctx, "Determine the sentiment of the text",
//	    "I love this product",
//	    []string{"Positive", "Negative", "Neutral"})
package prim

import "context"

// ChatBackend performs the network call to a remote chat-completion model.
// Implementations live in the openai, anthropic, and gemini subpackages.
//
// The contract a backend must satisfy:
//
//   - Send the messages in order with the given options. When
//     opts.ForceJSON is set, request constrained JSON-object output from
//     the provider.
//   - On a non-success status, fail with a *TransportError carrying the
//     status code and raw body text.
//   - On success, consume exactly the first candidate reply. When
//     opts.ForceJSON is set, parse the reply content as a JSON object and
//     populate Message.Object; a content that does not parse is a
//     *StructuredDecodeError, not a success.
//
// NewReply implements the reply-side half of this contract and should be
// used by all backends.
type ChatBackend interface {
	// Complete sends the conversation to the model and returns its reply.
	Complete(ctx context.Context, messages []Message, opts GenerationOptions) (Message, error)

	// Name returns the backend identifier (e.g. "openai", "anthropic").
	Name() string
}

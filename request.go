package prim

import (
	"context"

	"github.com/zoobzio/pipz"
)

// chatRequest flows through the pipz pipeline. It carries the built
// messages and options in, and the backend's reply out.
type chatRequest struct {
	// Input fields
	Messages []Message
	Options  GenerationOptions

	// Metadata fields
	RequestID string // Unique identifier for this request
	Operation string // Primitive name (classify, score_int, ...)
	Backend   string // Name of the backend being used

	// Output fields (populated by the pipeline)
	Reply Message
}

// newTerminal creates the terminal processor that performs the single
// backend call. Every facade pipeline ends here.
func newTerminal(backend ChatBackend) pipz.Chainable[*chatRequest] {
	return pipz.Apply("chat-complete", func(ctx context.Context, req *chatRequest) (*chatRequest, error) {
		reply, err := backend.Complete(ctx, req.Messages, req.Options)
		if err != nil {
			return req, err
		}
		req.Reply = reply
		return req, nil
	})
}

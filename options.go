package prim

import (
	"context"
	"fmt"

	"github.com/zoobzio/pipz"
)

// DefaultTemperature is the sampling temperature used by every primitive.
// All primitives want deterministic output, so builders never raise it.
const DefaultTemperature float64 = 0.0

// GenerationOptions control a single completion request. The zero value is
// valid: deterministic sampling, plain-text output.
type GenerationOptions struct {
	Temperature float64
	ForceJSON   bool
}

// OptionsBuilder builds an immutable GenerationOptions value.
type OptionsBuilder struct {
	opts GenerationOptions
}

// NewOptions returns a builder with defaults: temperature 0.0, plain text.
func NewOptions() *OptionsBuilder {
	return &OptionsBuilder{}
}

// Temperature sets the sampling temperature.
func (b *OptionsBuilder) Temperature(t float64) *OptionsBuilder {
	b.opts.Temperature = t
	return b
}

// ForceJSON requests constrained JSON-object output from the backend.
func (b *OptionsBuilder) ForceJSON(force bool) *OptionsBuilder {
	b.opts.ForceJSON = force
	return b
}

// Build returns the options value.
func (b *OptionsBuilder) Build() GenerationOptions {
	return b.opts
}

// Option modifies the request pipeline at facade construction.
type Option func(pipz.Chainable[*chatRequest]) pipz.Chainable[*chatRequest]

// WithDebug prints the outgoing messages and the raw reply around each
// backend call. Useful for understanding what the model sees and returns.
func WithDebug() Option {
	return func(pipeline pipz.Chainable[*chatRequest]) pipz.Chainable[*chatRequest] {
		debugger := pipz.Apply("debug", func(ctx context.Context, req *chatRequest) (*chatRequest, error) {
			fmt.Println("\n=== DEBUG: Messages ===")
			for _, msg := range req.Messages {
				fmt.Printf("[%s]\n%s\n", msg.Role, msg.Content)
			}
			fmt.Println("=======================")

			processed, err := pipeline.Process(ctx, req)
			if err != nil {
				fmt.Printf("\n=== DEBUG: Error ===\n%v\n====================\n\n", err)
				return processed, err
			}

			fmt.Println("\n=== DEBUG: Raw Reply ===")
			fmt.Println(processed.Reply.Content)
			fmt.Println("========================")

			return processed, nil
		})
		return debugger
	}
}

// WithErrorHandler adds caller-side error observation to the pipeline.
// The handler receives error context and can log or alert; the error still
// propagates to the caller unchanged.
func WithErrorHandler(handler pipz.Chainable[*pipz.Error[*chatRequest]]) Option {
	return func(pipeline pipz.Chainable[*chatRequest]) pipz.Chainable[*chatRequest] {
		return pipz.NewHandle("error-handler", pipeline, handler)
	}
}

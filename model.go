package prim

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// Model is the primitive facade. It composes the prompt builders, a
// ChatBackend, and the response decoder. A Model holds no mutable state and
// may be shared freely across goroutines; concurrent calls do not interact.
type Model struct {
	backend  ChatBackend
	pipeline pipz.Chainable[*chatRequest]
}

// New creates a Model over the given backend. Options wrap the request
// pipeline (see WithDebug, WithErrorHandler).
//
// Backend packages provide one-call constructors that read their credential
// and fail on misconfiguration, e.g. openai.NewModel("gpt-4o").
func New(backend ChatBackend, opts ...Option) *Model {
	pipeline := newTerminal(backend)
	for _, opt := range opts {
		pipeline = opt(pipeline)
	}
	return &Model{
		backend:  backend,
		pipeline: pipeline,
	}
}

// Backend returns the backend this model sends requests to.
func (m *Model) Backend() ChatBackend {
	return m.backend
}

// complete runs one request through the pipeline and returns the reply.
// It emits request lifecycle hooks keyed by a per-call request ID.
func (m *Model) complete(ctx context.Context, operation string, messages []Message, opts GenerationOptions) (Message, error) {
	requestID := uuid.New().String()

	request := &chatRequest{
		Messages:  messages,
		Options:   opts,
		RequestID: requestID,
		Operation: operation,
		Backend:   m.backend.Name(),
	}

	capitan.Info(ctx, RequestStarted,
		RequestIDKey.Field(requestID),
		OperationKey.Field(operation),
		BackendKey.Field(m.backend.Name()),
		TemperatureKey.Field(opts.Temperature),
	)

	processed, err := m.pipeline.Process(ctx, request)
	if err != nil {
		capitan.Error(ctx, RequestFailed,
			RequestIDKey.Field(requestID),
			OperationKey.Field(operation),
			BackendKey.Field(m.backend.Name()),
			ErrorKey.Field(err.Error()),
		)
		return Message{}, err
	}

	capitan.Info(ctx, RequestCompleted,
		RequestIDKey.Field(requestID),
		OperationKey.Field(operation),
		BackendKey.Field(m.backend.Name()),
		ResponseKey.Field(processed.Reply.Content),
	)

	return processed.Reply, nil
}

// decodeFailed emits the decode-failure hook before the error is returned.
func (m *Model) decodeFailed(ctx context.Context, operation string, reply Message, err error) {
	capitan.Error(ctx, ResponseDecodeFailed,
		OperationKey.Field(operation),
		BackendKey.Field(m.backend.Name()),
		ResponseKey.Field(reply.Content),
		ErrorKey.Field(err.Error()),
	)
}

// Classify asks the model to pick one of choices for the given instruction
// and text, and returns the zero-based index of the winning choice. Choices
// are labeled positionally (A, B, ... Z, AA, ...); the model answers with a
// label, which is resolved back to its index.
func (m *Model) Classify(ctx context.Context, instruction, text string, choices []string) (int, error) {
	set := encodeChoices(choices)
	messages, opts := classifyPrompt(instruction, text, set)

	reply, err := m.complete(ctx, "classify", messages, opts)
	if err != nil {
		return 0, fmt.Errorf("classify: %w", err)
	}

	index, err := decodeClassification(reply, set)
	if err != nil {
		m.decodeFailed(ctx, "classify", reply, err)
		return 0, fmt.Errorf("classify: %w", err)
	}
	return index, nil
}

// BinaryClassify asks a true/false question about the text. It classifies
// against the fixed choice set ["true", "false"], so label A means true and
// label B means false.
func (m *Model) BinaryClassify(ctx context.Context, instruction, text string) (bool, error) {
	index, err := m.Classify(ctx, instruction, text, []string{"true", "false"})
	if err != nil {
		return false, err
	}
	return index == 0, nil
}

// GenerateText sends the instruction as the system message and the text as
// the user message, and returns the reply content verbatim. No structured
// output is requested and no JSON decoding is attempted.
func (m *Model) GenerateText(ctx context.Context, instruction, text string) (string, error) {
	messages, opts := generatePrompt(instruction, text)

	reply, err := m.complete(ctx, "generate_text", messages, opts)
	if err != nil {
		return "", fmt.Errorf("generate text: %w", err)
	}
	return reply.Content, nil
}

// ScoreInt asks the model to score the text within [min, max] and returns
// the integer score. The bounds are stated in the prompt but the decoded
// score is returned as received, even outside them. A fractional score is a
// WrongTypeError, not a truncation.
func (m *Model) ScoreInt(ctx context.Context, instruction, text string, min, max int64) (int64, error) {
	messages, opts := scoreIntPrompt(instruction, text, min, max)

	reply, err := m.complete(ctx, "score_int", messages, opts)
	if err != nil {
		return 0, fmt.Errorf("score int: %w", err)
	}

	score, err := decodeScoreInt(reply)
	if err != nil {
		m.decodeFailed(ctx, "score_int", reply, err)
		return 0, fmt.Errorf("score int: %w", err)
	}
	return score, nil
}

// ScoreFloat is ScoreInt for floating-point scores. Any IEEE double the
// model returns is accepted.
func (m *Model) ScoreFloat(ctx context.Context, instruction, text string, min, max float64) (float64, error) {
	messages, opts := scoreFloatPrompt(instruction, text, min, max)

	reply, err := m.complete(ctx, "score_float", messages, opts)
	if err != nil {
		return 0, fmt.Errorf("score float: %w", err)
	}

	score, err := decodeScoreFloat(reply)
	if err != nil {
		m.decodeFailed(ctx, "score_float", reply, err)
		return 0, fmt.Errorf("score float: %w", err)
	}
	return score, nil
}

// Parse extracts a value of struct type T from free text. The JSON Schema
// for T is rendered into the prompt and the reply is decoded strictly
// against T's shape: required fields must be present, unknown fields are
// rejected.
func Parse[T any](ctx context.Context, m *Model, text string) (T, error) {
	var zero T

	schema, err := schemaFor[T]()
	if err != nil {
		return zero, fmt.Errorf("parse: render schema: %w", err)
	}

	messages, opts := parsePrompt(text, schema)

	reply, err := m.complete(ctx, "parse", messages, opts)
	if err != nil {
		return zero, fmt.Errorf("parse: %w", err)
	}

	out, err := decodeParsed[T](reply)
	if err != nil {
		m.decodeFailed(ctx, "parse", reply, err)
		return zero, fmt.Errorf("parse: %w", err)
	}
	return out, nil
}

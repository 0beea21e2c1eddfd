package prim

import "github.com/zoobzio/capitan"

// Signals for hook events. The core logs nothing itself; callers subscribe
// to these through capitan.
const (
	RequestStarted       = capitan.Signal("llm.request.started")
	RequestCompleted     = capitan.Signal("llm.request.completed")
	RequestFailed        = capitan.Signal("llm.request.failed")
	ResponseDecodeFailed = capitan.Signal("llm.response.decode.failed")
	BackendCallStarted   = capitan.Signal("llm.backend.call.started")
	BackendCallCompleted = capitan.Signal("llm.backend.call.completed")
	BackendCallFailed    = capitan.Signal("llm.backend.call.failed")
)

// Keys for hook event fields.
var (
	// Request identification.
	RequestIDKey   = capitan.NewStringKey("llm.request.id")
	OperationKey   = capitan.NewStringKey("llm.operation")
	TemperatureKey = capitan.NewFloat64Key("llm.temperature")

	// Response data.
	ResponseKey = capitan.NewStringKey("llm.response")

	// Error information.
	ErrorKey     = capitan.NewStringKey("llm.error")
	ErrorTypeKey = capitan.NewStringKey("llm.error.type")

	// Backend information.
	BackendKey = capitan.NewStringKey("llm.backend")
	ModelKey   = capitan.NewStringKey("llm.model")

	// Backend call metrics.
	PromptTokensKey     = capitan.NewIntKey("llm.tokens.prompt")
	CompletionTokensKey = capitan.NewIntKey("llm.tokens.completion")
	TotalTokensKey      = capitan.NewIntKey("llm.tokens.total")
	DurationMsKey       = capitan.NewIntKey("llm.duration.ms")

	// HTTP/API metadata.
	HTTPStatusCodeKey = capitan.NewIntKey("llm.http.status.code")
	APIErrorTypeKey   = capitan.NewStringKey("llm.api.error.type")
	APIErrorCodeKey   = capitan.NewStringKey("llm.api.error.code")

	// Response metadata.
	ResponseIDKey           = capitan.NewStringKey("llm.response.id")
	ResponseFinishReasonKey = capitan.NewStringKey("llm.response.finish.reason")
)

package prim

import (
	"errors"
	"fmt"
)

// ErrMissingObject reports that a primitive required a decoded JSON object
// but the reply carried none.
var ErrMissingObject = errors.New("object not found in response")

// TransportError reports a failed exchange with the remote model: either a
// non-success status (Status and Body set) or a network-level failure (Err
// set).
type TransportError struct {
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport: %v", e.Err)
	}
	return fmt.Sprintf("transport: status %d: %s", e.Status, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StructuredDecodeError reports reply content that was expected to be a JSON
// object but did not parse as one. It is raised at the backend boundary,
// before any primitive-level decoding.
type StructuredDecodeError struct {
	Content string
	Err     error
}

func (e *StructuredDecodeError) Error() string {
	return fmt.Sprintf("failed to parse response: %v", e.Err)
}

func (e *StructuredDecodeError) Unwrap() error { return e.Err }

// MissingFieldError reports an expected field absent from the decoded object.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s not found in response", e.Field)
}

// WrongTypeError reports a field present in the decoded object with the
// wrong shape.
type WrongTypeError struct {
	Field string
	Want  string
}

func (e *WrongTypeError) Error() string {
	return fmt.Sprintf("%s is not a valid %s", e.Field, e.Want)
}

// InvalidChoiceError reports a classification label outside the choice set
// encoded for the call.
type InvalidChoiceError struct {
	Label string
}

func (e *InvalidChoiceError) Error() string {
	return fmt.Sprintf("invalid classification: %s", e.Label)
}

// SchemaMismatchError reports a Parse target that could not be deserialized
// against its declared schema.
type SchemaMismatchError struct {
	Err error
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("response does not match schema: %v", e.Err)
}

func (e *SchemaMismatchError) Unwrap() error { return e.Err }

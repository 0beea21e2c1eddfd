package prim

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// Role identifies the author of a chat message.
type Role string

// Role constants for message authorship.
const (
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Message is a single chat message. Object holds the decoded JSON object of
// the content and is non-nil only when structured output was requested and
// the content parsed as a JSON object. Messages are built per call and never
// persisted.
type Message struct {
	Role    Role
	Content string
	Object  map[string]any
}

// DecodeObject parses content as a single JSON object. Numbers are kept as
// json.Number so integer values survive decoding exactly. A content that is
// not a JSON object yields a *StructuredDecodeError.
func DecodeObject(content string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(content))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, &StructuredDecodeError{Content: content, Err: err}
	}
	// null decodes into a nil map without error.
	if obj == nil {
		return nil, &StructuredDecodeError{Content: content, Err: errors.New("content is not a JSON object")}
	}
	// The object must be the whole content, not a prefix of it.
	var trailing json.RawMessage
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		return nil, &StructuredDecodeError{Content: content, Err: errors.New("trailing data after JSON object")}
	}
	return obj, nil
}

// NewReply builds the reply Message a backend returns for a completion.
// When structured is set, the content must parse as a JSON object; failure
// is a *StructuredDecodeError, terminal at the backend boundary.
func NewReply(role Role, content string, structured bool) (Message, error) {
	if !structured {
		return Message{Role: role, Content: content}, nil
	}
	obj, err := DecodeObject(content)
	if err != nil {
		return Message{}, err
	}
	return Message{Role: role, Content: content, Object: obj}, nil
}

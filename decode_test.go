package prim

import (
	"errors"
	"strings"
	"testing"
)

func structuredReply(t *testing.T, content string) Message {
	t.Helper()
	reply, err := NewReply(RoleAssistant, content, true)
	if err != nil {
		t.Fatalf("failed to build reply: %v", err)
	}
	return reply
}

func TestDecodeClassification(t *testing.T) {
	set := encodeChoices([]string{"Positive", "Negative", "Neutral"})

	t.Run("simple", func(t *testing.T) {
		index, err := decodeClassification(structuredReply(t, `{"classification": "B"}`), set)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if index != 1 {
			t.Errorf("index = %d, want 1", index)
		}
	})

	t.Run("missing object", func(t *testing.T) {
		reply := Message{Role: RoleAssistant, Content: `{"classification": "A"}`}
		_, err := decodeClassification(reply, set)
		if !errors.Is(err, ErrMissingObject) {
			t.Errorf("expected ErrMissingObject, got %v", err)
		}
	})

	t.Run("missing field", func(t *testing.T) {
		_, err := decodeClassification(structuredReply(t, `{"other": "A"}`), set)
		var missing *MissingFieldError
		if !errors.As(err, &missing) {
			t.Fatalf("expected MissingFieldError, got %v", err)
		}
		if missing.Field != "classification" {
			t.Errorf("field = %q", missing.Field)
		}
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := decodeClassification(structuredReply(t, `{"classification": 1}`), set)
		var wrong *WrongTypeError
		if !errors.As(err, &wrong) {
			t.Fatalf("expected WrongTypeError, got %v", err)
		}
	})

	t.Run("invalid choice carries label", func(t *testing.T) {
		_, err := decodeClassification(structuredReply(t, `{"classification": "Q"}`), set)
		var invalid *InvalidChoiceError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidChoiceError, got %v", err)
		}
		if invalid.Label != "Q" {
			t.Errorf("label = %q, want Q", invalid.Label)
		}
		if !strings.Contains(err.Error(), "Q") {
			t.Errorf("error text should carry the label: %v", err)
		}
	})
}

func TestDecodeScoreInt(t *testing.T) {
	t.Run("simple", func(t *testing.T) {
		score, err := decodeScoreInt(structuredReply(t, `{"score": 4}`))
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if score != 4 {
			t.Errorf("score = %d, want 4", score)
		}
	})

	t.Run("fractional fails instead of truncating", func(t *testing.T) {
		_, err := decodeScoreInt(structuredReply(t, `{"score": 4.5}`))
		var wrong *WrongTypeError
		if !errors.As(err, &wrong) {
			t.Fatalf("expected WrongTypeError, got %v", err)
		}
		if wrong.Field != "score" {
			t.Errorf("field = %q", wrong.Field)
		}
	})

	t.Run("out of declared bounds is returned as received", func(t *testing.T) {
		// Bounds are prompt text only, never enforced.
		score, err := decodeScoreInt(structuredReply(t, `{"score": 42}`))
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if score != 42 {
			t.Errorf("score = %d, want 42", score)
		}
	})

	t.Run("missing field", func(t *testing.T) {
		_, err := decodeScoreInt(structuredReply(t, `{}`))
		var missing *MissingFieldError
		if !errors.As(err, &missing) {
			t.Fatalf("expected MissingFieldError, got %v", err)
		}
	})

	t.Run("string score", func(t *testing.T) {
		_, err := decodeScoreInt(structuredReply(t, `{"score": "4"}`))
		var wrong *WrongTypeError
		if !errors.As(err, &wrong) {
			t.Fatalf("expected WrongTypeError, got %v", err)
		}
	})
}

func TestDecodeScoreFloat(t *testing.T) {
	t.Run("simple", func(t *testing.T) {
		score, err := decodeScoreFloat(structuredReply(t, `{"score": 0.75}`))
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if score != 0.75 {
			t.Errorf("score = %v, want 0.75", score)
		}
	})

	t.Run("integral value is a valid float", func(t *testing.T) {
		score, err := decodeScoreFloat(structuredReply(t, `{"score": 3}`))
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if score != 3.0 {
			t.Errorf("score = %v, want 3", score)
		}
	})

	t.Run("missing object", func(t *testing.T) {
		_, err := decodeScoreFloat(Message{Role: RoleAssistant, Content: "3"})
		if !errors.Is(err, ErrMissingObject) {
			t.Errorf("expected ErrMissingObject, got %v", err)
		}
	})
}

type address struct {
	Street string `json:"street"`
	Number int64  `json:"number"`
}

func TestDecodeParsed(t *testing.T) {
	t.Run("simple", func(t *testing.T) {
		got, err := decodeParsed[address](structuredReply(t, `{"street": "123 main st", "number": 123}`))
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		want := address{Street: "123 main st", Number: 123}
		if got != want {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("missing required field", func(t *testing.T) {
		_, err := decodeParsed[address](structuredReply(t, `{"street": "x"}`))
		var mismatch *SchemaMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("expected SchemaMismatchError, got %v", err)
		}
		if !strings.Contains(err.Error(), "number") {
			t.Errorf("error should name the missing field: %v", err)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := decodeParsed[address](structuredReply(t, `{"street": "x", "number": 1, "city": "y"}`))
		var mismatch *SchemaMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("expected SchemaMismatchError, got %v", err)
		}
	})

	t.Run("wrong field type", func(t *testing.T) {
		_, err := decodeParsed[address](structuredReply(t, `{"street": "x", "number": "one"}`))
		var mismatch *SchemaMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("expected SchemaMismatchError, got %v", err)
		}
	})

	t.Run("missing object", func(t *testing.T) {
		_, err := decodeParsed[address](Message{Role: RoleAssistant, Content: "text"})
		if !errors.Is(err, ErrMissingObject) {
			t.Errorf("expected ErrMissingObject, got %v", err)
		}
	})
}

package prim

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Response decoder. Each primitive validates the reply once at this boundary
// against its own typed envelope: {"classification": string} for
// classification, {"score": number} for scoring, the full target shape for
// parse. GenerateText performs no decoding at all.

// requireObject enforces the structured-output contract: a primitive that
// forced JSON output must see a decoded object on the reply.
func requireObject(reply Message) (map[string]any, error) {
	if reply.Object == nil {
		return nil, ErrMissingObject
	}
	return reply.Object, nil
}

// decodeClassification extracts the classification label and resolves it to
// a choice index via the set encoded for this call.
func decodeClassification(reply Message, set choiceSet) (int, error) {
	obj, err := requireObject(reply)
	if err != nil {
		return 0, err
	}

	v, ok := obj["classification"]
	if !ok {
		return 0, &MissingFieldError{Field: "classification"}
	}
	label, ok := v.(string)
	if !ok {
		return 0, &WrongTypeError{Field: "classification", Want: "string"}
	}

	index, ok := set.lookup(label)
	if !ok {
		return 0, &InvalidChoiceError{Label: label}
	}
	return index, nil
}

// scoreNumber extracts the raw score field as a json.Number.
func scoreNumber(reply Message) (json.Number, error) {
	obj, err := requireObject(reply)
	if err != nil {
		return "", err
	}

	v, ok := obj["score"]
	if !ok {
		return "", &MissingFieldError{Field: "score"}
	}
	n, ok := v.(json.Number)
	if !ok {
		return "", &WrongTypeError{Field: "score", Want: "number"}
	}
	return n, nil
}

// decodeScoreInt requires an exactly integral score. A fractional value
// fails rather than truncates.
func decodeScoreInt(reply Message) (int64, error) {
	n, err := scoreNumber(reply)
	if err != nil {
		return 0, err
	}
	i, err := n.Int64()
	if err != nil {
		return 0, &WrongTypeError{Field: "score", Want: "integer"}
	}
	return i, nil
}

// decodeScoreFloat accepts any IEEE double score.
func decodeScoreFloat(reply Message) (float64, error) {
	n, err := scoreNumber(reply)
	if err != nil {
		return 0, err
	}
	f, err := n.Float64()
	if err != nil {
		return 0, &WrongTypeError{Field: "score", Want: "number"}
	}
	return f, nil
}

// decodeParsed checks the required fields declared by T's schema, then
// re-serializes the object and decodes it strictly into T. Unknown fields
// are rejected, matching the additionalProperties:false the model was shown.
func decodeParsed[T any](reply Message) (T, error) {
	var out T

	obj, err := requireObject(reply)
	if err != nil {
		return out, err
	}

	for _, field := range requiredFieldsFor[T]() {
		if _, ok := obj[field]; !ok {
			return out, &SchemaMismatchError{Err: fmt.Errorf("missing required field %q", field)}
		}
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return out, &SchemaMismatchError{Err: err}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, &SchemaMismatchError{Err: err}
	}
	return out, nil
}

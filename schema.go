package prim

import (
	"encoding/json"
	"strings"

	"github.com/zoobzio/sentinel"
)

// Schema provider: renders a JSON Schema for a target struct type using
// sentinel's metadata extraction. The rendered document is embedded verbatim
// in parse prompts; the required-field list is reused by the parse decoder.

// schemaFor builds the JSON Schema document for T.
func schemaFor[T any]() (string, error) {
	metadata := sentinel.Inspect[T]()

	schema := map[string]any{
		"type":                 "object",
		"properties":           schemaProperties(metadata.Fields),
		"required":             requiredFields(metadata.Fields),
		"additionalProperties": false,
	}

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonBytes), nil
}

// requiredFieldsFor lists the JSON names T's decoder must see. A field is
// required unless its json tag carries omitempty.
func requiredFieldsFor[T any]() []string {
	metadata := sentinel.Inspect[T]()
	return requiredFields(metadata.Fields)
}

func schemaProperties(fields []sentinel.FieldMetadata) map[string]any {
	properties := make(map[string]any)

	for _, field := range fields {
		jsonName := jsonFieldName(field)
		if jsonName == "-" {
			continue
		}

		prop := map[string]any{
			"type": goTypeToJSONType(field.Type),
		}
		if desc, ok := field.Tags["desc"]; ok {
			prop["description"] = desc
		}
		properties[jsonName] = prop
	}

	return properties
}

func requiredFields(fields []sentinel.FieldMetadata) []string {
	var required []string

	for _, field := range fields {
		jsonName := jsonFieldName(field)
		if jsonName == "-" {
			continue
		}
		if !hasOmitempty(field) {
			required = append(required, jsonName)
		}
	}

	return required
}

func jsonFieldName(field sentinel.FieldMetadata) string {
	if jsonTag, ok := field.Tags["json"]; ok {
		// Handle "name,omitempty" format
		parts := strings.Split(jsonTag, ",")
		if len(parts) > 0 && parts[0] != "" {
			return parts[0]
		}
	}
	return strings.ToLower(field.Name[:1]) + field.Name[1:]
}

func hasOmitempty(field sentinel.FieldMetadata) bool {
	if jsonTag, ok := field.Tags["json"]; ok {
		return strings.Contains(jsonTag, "omitempty")
	}
	return false
}

func goTypeToJSONType(goType string) string {
	switch {
	case strings.HasPrefix(goType, "string"):
		return "string"
	case strings.HasPrefix(goType, "int"), strings.HasPrefix(goType, "uint"):
		return "integer"
	case strings.HasPrefix(goType, "float"):
		return "number"
	case strings.HasPrefix(goType, "bool"):
		return "boolean"
	case strings.HasPrefix(goType, "[]"):
		return "array"
	case strings.HasPrefix(goType, "map["):
		return "object"
	default:
		return "object"
	}
}

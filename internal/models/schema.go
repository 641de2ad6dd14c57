package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/genai"
)

// ToGenAISchema converts a jsonschema.Schema into the Gemini response
// schema format. Only the subset used for structured persona output is
// mapped.
func ToGenAISchema(schema *jsonschema.Schema) *genai.Schema {
	if schema == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        genaiType(schema),
		Description: schema.Description,
		Format:      schema.Format,
		Required:    schema.Required,
	}

	if len(schema.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(schema.Properties))
		for name, prop := range schema.Properties {
			if prop != nil {
				out.Properties[name] = ToGenAISchema(prop)
			}
		}
	}
	if schema.Items != nil {
		out.Items = ToGenAISchema(schema.Items)
	}
	if len(schema.Enum) > 0 {
		enum := make([]string, 0, len(schema.Enum))
		for _, v := range schema.Enum {
			if s, ok := v.(string); ok {
				enum = append(enum, s)
			} else {
				enum = append(enum, fmt.Sprint(v))
			}
		}
		out.Enum = enum
	}

	return out
}

func genaiType(schema *jsonschema.Schema) genai.Type {
	t := schema.Type
	if t == "" && len(schema.Types) > 0 {
		t = schema.Types[0]
	}
	switch t {
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	case "string":
		return genai.TypeString
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeObject
	}
}

// SchemaToMap converts a jsonschema.Schema into a plain JSON Schema map for
// providers that take schemas as untyped JSON.
func SchemaToMap(schema *jsonschema.Schema) map[string]any {
	if schema == nil {
		return nil
	}

	result := make(map[string]any)
	if schema.Type != "" {
		result["type"] = schema.Type
	} else if len(schema.Types) > 0 {
		result["type"] = schema.Types[0]
	} else {
		result["type"] = "object"
	}

	if schema.Description != "" {
		result["description"] = schema.Description
	}
	if schema.Format != "" {
		result["format"] = schema.Format
	}
	if len(schema.Enum) > 0 {
		result["enum"] = schema.Enum
	}
	if len(schema.Default) > 0 {
		var defaultVal any
		if err := json.Unmarshal(schema.Default, &defaultVal); err == nil {
			result["default"] = defaultVal
		}
	}

	if len(schema.Properties) > 0 {
		properties := make(map[string]any, len(schema.Properties))
		for name, prop := range schema.Properties {
			if prop != nil {
				properties[name] = SchemaToMap(prop)
			}
		}
		result["properties"] = properties
	}
	if len(schema.Required) > 0 {
		result["required"] = schema.Required
	}
	if schema.Items != nil {
		result["items"] = SchemaToMap(schema.Items)
	}

	return result
}

package llm

import (
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"

	"github.com/jonathan/coverletter-agent/internal/schemas"
)

// Schema describes the JSON document a completion must produce.
// Document holds a JSON Schema (draft-07) and is the single source used for both the provider's
// structured-output constraint and local validation of the response.
type Schema struct {
	Name        string
	Description string
	Document    string
}

// SchemaFor builds a Schema from one of the embedded schemas.
func SchemaFor(name, description string) (*Schema, error) {
	doc, err := schemas.Get(name)
	if err != nil {
		return nil, err
	}
	return &Schema{Name: name, Description: description, Document: doc}, nil
}

// Map decodes the schema document into a generic map.
func (s *Schema) Map() (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(s.Document), &m); err != nil {
		return nil, fmt.Errorf("invalid schema document %s: %w", s.Name, err)
	}
	return m, nil
}

// Validate checks raw JSON against the schema document.
func (s *Schema) Validate(raw string) error {
	return schemas.ValidateJSONString(s.Document, raw)
}

// openAIUnsupported lists keywords rejected by strict structured outputs.
// Validation against the full document still enforces them locally.
var openAIUnsupported = []string{"$schema", "$id", "title", "minLength", "maxLength", "minItems", "maxItems"}

// openAISchema returns the schema map with keywords strict mode rejects removed.
func (s *Schema) openAISchema() (map[string]any, error) {
	m, err := s.Map()
	if err != nil {
		return nil, err
	}
	stripKeywords(m)
	return m, nil
}

func stripKeywords(node map[string]any) {
	for _, key := range openAIUnsupported {
		delete(node, key)
	}
	if props, ok := node["properties"].(map[string]any); ok {
		for _, p := range props {
			if child, ok := p.(map[string]any); ok {
				stripKeywords(child)
			}
		}
	}
	if items, ok := node["items"].(map[string]any); ok {
		stripKeywords(items)
	}
}

// genaiSchema converts the schema document to Gemini's response schema.
func (s *Schema) genaiSchema() (*genai.Schema, error) {
	m, err := s.Map()
	if err != nil {
		return nil, err
	}
	return toGenaiSchema(m)
}

func toGenaiSchema(node map[string]any) (*genai.Schema, error) {
	out := &genai.Schema{}
	if desc, ok := node["description"].(string); ok {
		out.Description = desc
	}

	typeName, _ := node["type"].(string)
	switch typeName {
	case "object":
		out.Type = genai.TypeObject
		props, _ := node["properties"].(map[string]any)
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, p := range props {
			child, ok := p.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("property %s: expected object", name)
			}
			converted, err := toGenaiSchema(child)
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", name, err)
			}
			out.Properties[name] = converted
		}
		if required, ok := node["required"].([]any); ok {
			for _, r := range required {
				if name, ok := r.(string); ok {
					out.Required = append(out.Required, name)
				}
			}
		}
	case "array":
		out.Type = genai.TypeArray
		items, ok := node["items"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("array schema without items")
		}
		converted, err := toGenaiSchema(items)
		if err != nil {
			return nil, err
		}
		out.Items = converted
	case "string":
		out.Type = genai.TypeString
		if enum, ok := node["enum"].([]any); ok {
			for _, e := range enum {
				if v, ok := e.(string); ok {
					out.Enum = append(out.Enum, v)
				}
			}
		}
	case "integer":
		out.Type = genai.TypeInteger
	case "number":
		out.Type = genai.TypeNumber
	case "boolean":
		out.Type = genai.TypeBoolean
	default:
		return nil, fmt.Errorf("unsupported schema type %q", typeName)
	}
	return out, nil
}

package schema

import (
	"encoding/json"
	"strings"
)

// ToGemini renders s in the OpenAPI subset accepted by the Gemini
// responseSchema field.
func (s *Schema) ToGemini() map[string]any {
	out := map[string]any{"type": strings.ToUpper(string(s.Type))}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		out["format"] = "enum"
		out["enum"] = append([]string(nil), s.Enum...)
	}
	switch s.Type {
	case TypeObject:
		props := make(map[string]any, len(s.Properties))
		names := make([]string, 0, len(s.Properties))
		for _, p := range s.Properties {
			props[p.Name] = p.Schema.ToGemini()
			names = append(names, p.Name)
		}
		out["properties"] = props
		out["required"] = names
		out["propertyOrdering"] = names
	case TypeArray:
		if s.Items != nil {
			out["items"] = s.Items.ToGemini()
		}
	}
	return out
}

// ToJSONSchema renders s as strict JSON Schema: every property required and
// no additional properties.
func (s *Schema) ToJSONSchema() map[string]any {
	out := map[string]any{"type": string(s.Type)}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		out["enum"] = append([]string(nil), s.Enum...)
	}
	switch s.Type {
	case TypeObject:
		props := make(map[string]any, len(s.Properties))
		names := make([]string, 0, len(s.Properties))
		for _, p := range s.Properties {
			props[p.Name] = p.Schema.ToJSONSchema()
			names = append(names, p.Name)
		}
		out["properties"] = props
		out["required"] = names
		out["additionalProperties"] = false
	case TypeArray:
		if s.Items != nil {
			out["items"] = s.Items.ToJSONSchema()
		}
	}
	return out
}

// Layout renders an example-shaped JSON skeleton of s for embedding in prompt
// text when the provider cannot enforce the schema itself.
func (s *Schema) Layout() string {
	b, err := json.MarshalIndent(s.layoutValue(), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

func (s *Schema) layoutValue() any {
	switch s.Type {
	case TypeObject:
		// Ordered keys keep the skeleton readable for the model.
		return orderedLayout(s)
	case TypeArray:
		if s.Items == nil {
			return []any{}
		}
		return []any{s.Items.layoutValue()}
	case TypeNumber, TypeInteger:
		hint := string(s.Type)
		if s.Min != nil && s.Max != nil {
			hint += " " + trimFloat(*s.Min) + "-" + trimFloat(*s.Max)
		}
		if s.Description != "" {
			hint += " (" + s.Description + ")"
		}
		return "<" + hint + ">"
	case TypeBoolean:
		return "<boolean>"
	default:
		if len(s.Enum) > 0 {
			return strings.Join(s.Enum, "|")
		}
		if s.Description != "" {
			return "<" + s.Description + ">"
		}
		return "<string>"
	}
}

type orderedObject struct {
	keys   []string
	values map[string]any
}

func (o orderedObject) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

func orderedLayout(s *Schema) orderedObject {
	o := orderedObject{values: make(map[string]any, len(s.Properties))}
	for _, p := range s.Properties {
		o.keys = append(o.keys, p.Name)
		o.values[p.Name] = p.Schema.layoutValue()
	}
	return o
}

func trimFloat(v float64) string {
	b, _ := json.Marshal(v)
	return string(b)
}

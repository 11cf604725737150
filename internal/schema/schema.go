// Package schema describes the closed output contracts that model responses
// are requested in and coerced to.
package schema

import (
	"strings"
)

type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
)

// Schema is a node of a closed, typed object tree. Objects list their
// properties in declaration order and admit no other keys.
type Schema struct {
	Type        Type
	Description string
	Enum        []string
	Properties  []Property
	Items       *Schema
	// Min and Max bound numeric fields; their midpoint is the fallback value
	// when a scalar cannot be recovered.
	Min, Max *float64
	Default  any
}

type Property struct {
	Name   string
	Schema *Schema
}

func Object(props ...Property) *Schema {
	return &Schema{Type: TypeObject, Properties: props}
}

func Field(name string, s *Schema) Property {
	return Property{Name: name, Schema: s}
}

func ArrayOf(items *Schema) *Schema {
	return &Schema{Type: TypeArray, Items: items}
}

func String(description string) *Schema {
	return &Schema{Type: TypeString, Description: description}
}

func Number(description string) *Schema {
	return &Schema{Type: TypeNumber, Description: description}
}

func Integer(description string) *Schema {
	return &Schema{Type: TypeInteger, Description: description}
}

func Boolean(description string) *Schema {
	return &Schema{Type: TypeBoolean, Description: description}
}

// Ranged is a number bounded to [min, max].
func Ranged(min, max float64, description string) *Schema {
	return &Schema{Type: TypeNumber, Description: description, Min: &min, Max: &max}
}

// Enum is a string restricted to values; the first value is the fallback
// unless def is one of them.
func Enum(description string, def string, values ...string) *Schema {
	s := &Schema{Type: TypeString, Description: description, Enum: append([]string(nil), values...)}
	for _, v := range values {
		if v == def {
			s.Default = def
		}
	}
	return s
}

// OpenEnum is an Enum whose unrecognised values collapse to the empty string,
// leaving the caller to drop them.
func OpenEnum(description string, values ...string) *Schema {
	s := Enum(description, "", values...)
	s.Default = ""
	return s
}

// Describe returns a copy of s carrying a different description.
func (s *Schema) Describe(description string) *Schema {
	cp := *s
	cp.Description = description
	return &cp
}

// Lookup returns the schema of the named property.
func (s *Schema) Lookup(name string) (*Schema, bool) {
	if s == nil || s.Type != TypeObject {
		return nil, false
	}
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Schema, true
		}
	}
	return nil, false
}

// Path resolves a dotted property path such as "metrics.tradesCount".
func (s *Schema) Path(path string) (*Schema, bool) {
	cur := s
	for _, part := range strings.Split(path, ".") {
		next, ok := cur.Lookup(part)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Midpoint is the neutral value for a numeric field.
func (s *Schema) Midpoint() float64 {
	if s == nil {
		return 0
	}
	if v, ok := s.Default.(float64); ok {
		return v
	}
	if s.Min != nil && s.Max != nil {
		return (*s.Min + *s.Max) / 2
	}
	return 0
}

// EnumDefault is the value an unrecognised enum collapses to.
func (s *Schema) EnumDefault() string {
	if s == nil || len(s.Enum) == 0 {
		return ""
	}
	if v, ok := s.Default.(string); ok {
		return v
	}
	return s.Enum[0]
}

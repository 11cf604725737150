package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/schema"
)

// ScalarKeys are the sub-keys probed, in order, when a scalar field arrives
// as an object.
var ScalarKeys = []string{"overall", "score", "value"}

// Coerce adapts v to the shape of s. Unknown object keys are dropped, missing
// ones are filled with defaults, and scalars are recovered from off-contract
// representations. Coerce never fails and is idempotent.
func Coerce(v any, s *schema.Schema) any {
	if s == nil {
		return v
	}
	switch s.Type {
	case schema.TypeObject:
		return coerceObject(v, s)
	case schema.TypeArray:
		return coerceArray(v, s)
	case schema.TypeNumber:
		return coerceNumber(v, s)
	case schema.TypeInteger:
		return math.Round(coerceNumber(v, s))
	case schema.TypeBoolean:
		return coerceBool(v)
	default:
		return coerceString(v, s)
	}
}

func coerceObject(v any, s *schema.Schema) map[string]any {
	in, _ := v.(map[string]any)
	out := make(map[string]any, len(s.Properties))
	for _, p := range s.Properties {
		out[p.Name] = Coerce(in[p.Name], p.Schema)
	}
	return out
}

func coerceArray(v any, s *schema.Schema) []any {
	var in []any
	switch t := v.(type) {
	case []any:
		in = t
	case map[string]any:
		// A lone object where a list of objects was expected.
		if s.Items != nil && s.Items.Type == schema.TypeObject {
			in = []any{t}
		}
	}
	out := make([]any, 0, len(in))
	for _, item := range in {
		if item == nil {
			continue
		}
		out = append(out, Coerce(item, s.Items))
	}
	return out
}

func coerceNumber(v any, s *schema.Schema) float64 {
	if f, ok := scalarNumber(v); ok {
		return f
	}
	if m, ok := v.(map[string]any); ok {
		for _, key := range ScalarKeys {
			if f, ok := scalarNumber(m[key]); ok {
				return f
			}
		}
	}
	return s.Midpoint()
}

func scalarNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return t, true
	case string:
		return parseNumeric(t)
	}
	return 0, false
}

// parseNumeric accepts display numbers such as "72%", "$1,250.50" or "+3.1".
func parseNumeric(raw string) (float64, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.TrimPrefix(cleaned, "+")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func coerceBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return err == nil && b
	case float64:
		return t != 0
	}
	return false
}

func coerceString(v any, s *schema.Schema) string {
	var text string
	switch t := v.(type) {
	case string:
		text = t
	case float64:
		text = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		text = strconv.FormatBool(t)
	case map[string]any:
		for _, key := range ScalarKeys {
			if str, ok := t[key].(string); ok {
				text = str
				break
			}
		}
	}

	if len(s.Enum) == 0 {
		if text == "" {
			if def, ok := s.Default.(string); ok {
				return def
			}
		}
		return text
	}

	trimmed := strings.TrimSpace(text)
	for _, allowed := range s.Enum {
		if strings.EqualFold(trimmed, allowed) {
			return allowed
		}
	}
	return s.EnumDefault()
}

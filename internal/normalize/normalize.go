// Package normalize recovers well-formed, contract-shaped JSON from raw model
// output.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/schema"

	"github.com/tidwall/gjson"
)

const maxDiagnosticLen = 2000

// MalformedResponseError reports model output that is not valid JSON after
// fence stripping. Raw keeps the offending text for diagnostics.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed model response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// Snippet returns a truncated copy of the raw text for logging.
func (e *MalformedResponseError) Snippet() string {
	if len(e.Raw) <= maxDiagnosticLen {
		return e.Raw
	}
	return e.Raw[:maxDiagnosticLen] + "..."
}

var (
	// wrappedPattern matches a payload whose first and last lines are fences.
	wrappedPattern = regexp.MustCompile("(?s)^```[a-zA-Z0-9_-]*[ \t]*\r?\n?(.*?)\r?\n?[ \t]*```$")
	// blockPattern finds fenced blocks embedded in prose.
	blockPattern   = regexp.MustCompile("(?s)```[a-zA-Z0-9_-]*[ \t]*\r?\n(.*?)\r?\n[ \t]*```")
)

// StripFences removes markdown code fences, tagged or bare. Text that is
// already valid JSON is returned trimmed, so fences quoted inside JSON
// strings are left alone.
func StripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if gjson.Valid(text) {
		return text
	}
	if strings.HasPrefix(text, "```") {
		if m := wrappedPattern.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
		// An unterminated opening fence still wraps the payload.
		text = strings.TrimPrefix(text, "```")
		if nl := strings.IndexByte(text, '\n'); nl >= 0 && !strings.ContainsAny(text[:nl], "{[") {
			text = text[nl+1:]
		}
		return strings.TrimSpace(text)
	}
	for _, m := range blockPattern.FindAllStringSubmatch(text, -1) {
		if body := strings.TrimSpace(m[1]); gjson.Valid(body) {
			return body
		}
	}
	return text
}

// Parse strips fences, decodes JSON and, when s is non-nil, coerces the
// value to the schema shape.
func Parse(raw string, s *schema.Schema) (any, error) {
	text := StripFences(raw)
	if text == "" {
		return nil, &MalformedResponseError{Raw: raw, Err: fmt.Errorf("empty response")}
	}
	if !gjson.Valid(text) {
		return nil, &MalformedResponseError{Raw: raw, Err: fmt.Errorf("invalid JSON")}
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &MalformedResponseError{Raw: raw, Err: err}
	}
	if s == nil {
		return v, nil
	}
	return Coerce(v, s), nil
}

// ParseInto parses raw against s and decodes the coerced value into out.
func ParseInto(raw string, s *schema.Schema, out any) error {
	v, err := Parse(raw, s)
	if err != nil {
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return &MalformedResponseError{Raw: raw, Err: err}
	}
	if err := json.Unmarshal(b, out); err != nil {
		return &MalformedResponseError{Raw: raw, Err: err}
	}
	return nil
}

// Package schemas defines the structured-output contract for each agent: the
// JSON schema sent with every request, and defensive validation of whatever
// the remote service returns. The remote "strict schema" enforcement is not
// trusted as the sole gate.
package schemas

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationError reports structurally well-formed JSON that fails the
// contract. Path is a dotted path to the offending field, e.g.
// "pain_points[2].severity".
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid agent output at %s: %s", e.Path, e.Message)
}

// checkSchema validates a raw object against a JSON schema document and
// converts the first violation into a ValidationError.
func checkSchema(schema json.RawMessage, data map[string]any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewGoLoader(data),
	)
	if err != nil {
		return &ValidationError{Path: "root", Message: err.Error()}
	}
	if result.Valid() {
		return nil
	}

	// Fail fast on the first violation.
	first := result.Errors()[0]
	return &ValidationError{Path: fieldPath(first.Field()), Message: first.Description()}
}

// fieldPath rewrites gojsonschema's dotted field paths ("pain_points.2.severity")
// into the bracketed form used in error messages ("pain_points[2].severity").
func fieldPath(field string) string {
	if field == "(root)" || field == "" {
		return "root"
	}

	parts := strings.Split(field, ".")
	var sb strings.Builder
	for _, part := range parts {
		if isIndex(part) {
			sb.WriteString("[" + part + "]")
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(".")
		}
		sb.WriteString(part)
	}
	return sb.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// decodeInto re-marshals a validated raw object into its typed shape.
func decodeInto(data map[string]any, out any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return &ValidationError{Path: "root", Message: err.Error()}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ValidationError{Path: "root", Message: err.Error()}
	}
	return nil
}

func requireNonEmpty(value, path string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", &ValidationError{Path: path, Message: "must be a non-empty string"}
	}
	return trimmed, nil
}

func rejectFences(value, path string) error {
	if strings.Contains(value, "```") {
		return &ValidationError{Path: path, Message: "must not contain markdown fences"}
	}
	return nil
}

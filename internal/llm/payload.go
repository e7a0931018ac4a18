package llm

import "encoding/json"

// Role values for input messages.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ContentBlock is a single typed content part of an input message.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Message is one role-tagged block of the request input.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// Format names the strict JSON schema the response must match.
type Format struct {
	Type   string          `json:"type"`
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

// SchemaFormat builds the strict json_schema response-format directive.
func SchemaFormat(name string, schema json.RawMessage) Format {
	return Format{Type: "json_schema", Name: name, Strict: true, Schema: schema}
}

type textDirective struct {
	Format Format `json:"format"`
}

// request is the wire body POSTed to the Responses endpoint.
type request struct {
	Model       string        `json:"model"`
	Temperature *float64      `json:"temperature,omitempty"`
	Input       []Message     `json:"input"`
	Text        textDirective `json:"text"`
}

// TextMessage builds a single input_text message for a role.
func TextMessage(role, text string) Message {
	return Message{
		Role:    role,
		Content: []ContentBlock{{Type: "input_text", Text: text}},
	}
}

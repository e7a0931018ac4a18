package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// responseEnvelope mirrors the known locations of the structured payload in a
// Responses API body. The remote service may return the object pre-parsed, as
// a raw JSON string, or nested inside role/content blocks.
type responseEnvelope struct {
	OutputJSON   map[string]any  `json:"output_json"`
	OutputParsed map[string]any  `json:"output_parsed"`
	OutputText   json.RawMessage `json:"output_text"`
	Output       []outputItem    `json:"output"`
}

type outputItem struct {
	Content []outputBlock `json:"content"`
}

type outputBlock struct {
	JSON map[string]any `json:"json"`
	Text string         `json:"text"`
}

// ExtractOutput locates and parses the structured JSON object in a raw
// response body. It tries each known location in a fixed priority order:
// output_json, output_parsed, output_text (string or list of strings), then
// output[].content[] blocks. It is a pure function of the body.
func ExtractOutput(body []byte) (map[string]any, error) {
	var env responseEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("response body is not valid JSON: %w", err)
	}

	if env.OutputJSON != nil {
		return env.OutputJSON, nil
	}
	if env.OutputParsed != nil {
		return env.OutputParsed, nil
	}

	if obj, ok, err := parseOutputText(env.OutputText); err != nil {
		return nil, err
	} else if ok {
		return obj, nil
	}

	for _, item := range env.Output {
		for _, block := range item.Content {
			if block.JSON != nil {
				return block.JSON, nil
			}
			if strings.TrimSpace(block.Text) != "" {
				return parseJSONObject(block.Text, "content text")
			}
		}
	}

	return nil, fmt.Errorf("could not extract structured JSON output")
}

// parseOutputText handles the output_text field, which may be a plain string
// or a list of string fragments to join.
func parseOutputText(raw json.RawMessage) (map[string]any, bool, error) {
	if len(raw) == 0 {
		return nil, false, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if strings.TrimSpace(text) == "" {
			return nil, false, nil
		}
		obj, err := parseJSONObject(text, "output_text")
		return obj, err == nil, err
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err == nil {
		var sb strings.Builder
		for _, part := range parts {
			var s string
			if err := json.Unmarshal(part, &s); err == nil {
				sb.WriteString(s)
			}
		}
		joined := strings.TrimSpace(sb.String())
		if joined == "" {
			return nil, false, nil
		}
		obj, err := parseJSONObject(joined, "output_text")
		return obj, err == nil, err
	}

	return nil, false, nil
}

func parseJSONObject(text, where string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, fmt.Errorf("%s is not a JSON object: %w", where, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%s is not a JSON object", where)
	}
	return obj, nil
}

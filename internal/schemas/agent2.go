package schemas

import (
	"encoding/json"

	"github.com/jonathan/outreach-crm/internal/types"
)

// Agent2FormatName names the drafter's response format.
const Agent2FormatName = "agent2_output"

// Agent2Schema is the strict schema for the drafter's output.
var Agent2Schema = json.RawMessage(`{
  "type": "object",
  "additionalProperties": false,
  "required": ["subject", "email_body", "used_signal"],
  "properties": {
    "subject": {"type": "string"},
    "email_body": {"type": "string"},
    "used_signal": {"type": "string"}
  }
}`)

// ValidateAgent2 checks an extracted raw object against the Agent 2 contract.
// All three fields must be non-blank; the result is trimmed.
func ValidateAgent2(data map[string]any) (*types.Agent2Output, error) {
	if err := checkSchema(Agent2Schema, data); err != nil {
		return nil, err
	}

	var out types.Agent2Output
	if err := decodeInto(data, &out); err != nil {
		return nil, err
	}

	var err error
	if out.Subject, err = requireNonEmpty(out.Subject, "subject"); err != nil {
		return nil, err
	}
	if out.EmailBody, err = requireNonEmpty(out.EmailBody, "email_body"); err != nil {
		return nil, err
	}
	if out.UsedSignal, err = requireNonEmpty(out.UsedSignal, "used_signal"); err != nil {
		return nil, err
	}

	return &out, nil
}

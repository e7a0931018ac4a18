package schemas

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/outreach-crm/internal/types"
)

// Agent3FormatName names the verifier's response format.
const Agent3FormatName = "agent3_verdict"

// Agent3Schema is the strict schema for the verifier's verdict. Unknown keys
// are rejected on both the root object and the nested final_email.
var Agent3Schema = json.RawMessage(`{
  "type": "object",
  "additionalProperties": false,
  "required": ["decision", "issues", "final_email"],
  "properties": {
    "decision": {"type": "string", "enum": ["send", "hold"]},
    "issues": {"type": "array", "items": {"type": "string"}},
    "final_email": {
      "type": "object",
      "additionalProperties": false,
      "required": ["subject", "email_body"],
      "properties": {
        "subject": {"type": "string"},
        "email_body": {"type": "string"}
      }
    }
  }
}`)

// ValidateAgent3 checks an extracted raw object against the verifier contract:
// decision must be exactly send or hold, final_email text must be non-blank
// and free of markdown fences. Returns the normalized verdict.
func ValidateAgent3(data map[string]any) (*types.Agent3Verdict, error) {
	if err := checkSchema(Agent3Schema, data); err != nil {
		return nil, err
	}

	var out types.Agent3Verdict
	if err := decodeInto(data, &out); err != nil {
		return nil, err
	}

	// The schema enum already constrains decision; re-check defensively.
	if out.Decision != types.DecisionSend && out.Decision != types.DecisionHold {
		return nil, &ValidationError{
			Path:    "decision",
			Message: fmt.Sprintf("must be one of: send, hold (got %q)", out.Decision),
		}
	}

	var err error
	if out.FinalEmail.Subject, err = requireNonEmpty(out.FinalEmail.Subject, "final_email.subject"); err != nil {
		return nil, err
	}
	if out.FinalEmail.EmailBody, err = requireNonEmpty(out.FinalEmail.EmailBody, "final_email.email_body"); err != nil {
		return nil, err
	}
	if err := rejectFences(out.FinalEmail.Subject, "final_email.subject"); err != nil {
		return nil, err
	}
	if err := rejectFences(out.FinalEmail.EmailBody, "final_email.email_body"); err != nil {
		return nil, err
	}

	if out.Issues == nil {
		out.Issues = []string{}
	}

	return &out, nil
}

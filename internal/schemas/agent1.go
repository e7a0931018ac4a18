package schemas

import (
	"encoding/json"
	"strings"

	"github.com/jonathan/outreach-crm/internal/types"
)

// Agent1FormatName names the extractor's response format.
const Agent1FormatName = "agent1_output"

// Agent1Schema is the strict schema for the signal extractor's output. It is
// sent with the request and re-checked locally on the response.
var Agent1Schema = json.RawMessage(`{
  "type": "object",
  "additionalProperties": false,
  "required": ["website_summary", "rapport_hooks", "pain_points", "recommended_angle"],
  "properties": {
    "website_summary": {
      "type": "object",
      "additionalProperties": false,
      "required": ["one_liner", "services_offered"],
      "properties": {
        "one_liner": {"type": "string"},
        "services_offered": {"type": "array", "items": {"type": "string"}}
      }
    },
    "rapport_hooks": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["type", "hook", "evidence_quote"],
        "properties": {
          "type": {"type": "string"},
          "hook": {"type": "string"},
          "evidence_quote": {"type": "string"}
        }
      }
    },
    "pain_points": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["pain", "severity", "evidence_quote"],
        "properties": {
          "pain": {"type": "string"},
          "severity": {"type": "string"},
          "evidence_quote": {"type": "string"}
        }
      }
    },
    "recommended_angle": {
      "type": "object",
      "additionalProperties": false,
      "required": ["primary_offer", "cta"],
      "properties": {
        "primary_offer": {"type": "string"},
        "cta": {"type": "string"}
      }
    }
  }
}`)

// ValidateAgent1 checks an extracted raw object against the Agent 1 contract
// and returns the normalized output with string fields trimmed.
func ValidateAgent1(data map[string]any) (*types.Agent1Output, error) {
	if err := checkSchema(Agent1Schema, data); err != nil {
		return nil, err
	}

	var out types.Agent1Output
	if err := decodeInto(data, &out); err != nil {
		return nil, err
	}

	out.WebsiteSummary.OneLiner = strings.TrimSpace(out.WebsiteSummary.OneLiner)
	for i := range out.WebsiteSummary.ServicesOffered {
		out.WebsiteSummary.ServicesOffered[i] = strings.TrimSpace(out.WebsiteSummary.ServicesOffered[i])
	}
	for i := range out.RapportHooks {
		out.RapportHooks[i].Type = strings.TrimSpace(out.RapportHooks[i].Type)
		out.RapportHooks[i].Hook = strings.TrimSpace(out.RapportHooks[i].Hook)
		out.RapportHooks[i].EvidenceQuote = strings.TrimSpace(out.RapportHooks[i].EvidenceQuote)
	}
	for i := range out.PainPoints {
		out.PainPoints[i].Pain = strings.TrimSpace(out.PainPoints[i].Pain)
		out.PainPoints[i].Severity = strings.TrimSpace(out.PainPoints[i].Severity)
		out.PainPoints[i].EvidenceQuote = strings.TrimSpace(out.PainPoints[i].EvidenceQuote)
	}
	out.RecommendedAngle.PrimaryOffer = strings.TrimSpace(out.RecommendedAngle.PrimaryOffer)
	out.RecommendedAngle.CTA = strings.TrimSpace(out.RecommendedAngle.CTA)

	return &out, nil
}

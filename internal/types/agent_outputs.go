// Package types provides type definitions for structured data used throughout the outreach-crm system.
package types

// WebsiteSummary is the business summary portion of an Agent 1 report.
type WebsiteSummary struct {
	OneLiner        string   `json:"one_liner"`
	ServicesOffered []string `json:"services_offered"`
}

// RapportHook is a single conversation opener backed by a verbatim quote.
type RapportHook struct {
	Type          string `json:"type"`
	Hook          string `json:"hook"`
	EvidenceQuote string `json:"evidence_quote"`
}

// PainPoint is an explicitly stated operational or technology pain.
// EvidenceQuote must be a verbatim snippet of the snapshot text; unquoted
// claims are not treated as verified facts downstream.
type PainPoint struct {
	Pain          string `json:"pain"`
	Severity      string `json:"severity"`
	EvidenceQuote string `json:"evidence_quote"`
}

// RecommendedAngle is Agent 1's suggested outreach framing.
type RecommendedAngle struct {
	PrimaryOffer string `json:"primary_offer"`
	CTA          string `json:"cta"`
}

// Agent1Output is the structured signal report extracted from website text.
type Agent1Output struct {
	WebsiteSummary   WebsiteSummary   `json:"website_summary"`
	RapportHooks     []RapportHook    `json:"rapport_hooks"`
	PainPoints       []PainPoint      `json:"pain_points"`
	RecommendedAngle RecommendedAngle `json:"recommended_angle"`
}

// Agent2Output is a drafted outreach email plus the signal it leaned on.
type Agent2Output struct {
	Subject    string `json:"subject"`
	EmailBody  string `json:"email_body"`
	UsedSignal string `json:"used_signal"`
}

// FinalEmail is the possibly tone-edited email returned by the verifier.
type FinalEmail struct {
	Subject   string `json:"subject"`
	EmailBody string `json:"email_body"`
}

// Decision values for Agent 3 verdicts.
const (
	DecisionSend = "send"
	DecisionHold = "hold"
)

// Agent3Verdict is the verifier's decision over a draft. Decision is "hold"
// whenever an unsupported claim exists, with Issues explaining why.
type Agent3Verdict struct {
	Decision   string     `json:"decision"`
	Issues     []string   `json:"issues"`
	FinalEmail FinalEmail `json:"final_email"`
}

// VerdictSourceAgent2 marks a draft as produced by Agent 2 and not yet
// verified. RunAgent3 looks for this marker when picking a verifiable draft.
const VerdictSourceAgent2 = "agent2"

// DraftVerdict is the JSONB shape persisted on email_drafts.agent3_verdict.
// Freshly drafted rows carry only Source; verified rows carry the full verdict.
type DraftVerdict struct {
	Source     string      `json:"source,omitempty"`
	Decision   string      `json:"decision,omitempty"`
	Issues     []string    `json:"issues,omitempty"`
	FinalEmail *FinalEmail `json:"final_email,omitempty"`
}

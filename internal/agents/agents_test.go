package agents

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/outreach-crm/internal/config"
	"github.com/jonathan/outreach-crm/internal/llm"
	"github.com/jonathan/outreach-crm/internal/schemas"
	"github.com/jonathan/outreach-crm/internal/types"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		APIKey:         "test-key",
		Model:          "test-model",
		BaseURL:        baseURL,
		MaxRetries:     0,
		BaseBackoff:    100 * time.Millisecond,
		RequestTimeout: 5 * time.Second,
	}
}

// fakeUpstream serves a fixed structured output and captures the request body.
func fakeUpstream(t *testing.T, output map[string]any) (*httptest.Server, *map[string]any) {
	t.Helper()
	captured := &map[string]any{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"output_json": output}))
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func TestRunWithoutAPIKeyFailsAsConfigurationError(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.APIKey = ""

	_, err := NewExtractor(cfg).Run(context.Background(), "text")
	var confErr *llm.ConfigurationError
	require.ErrorAs(t, err, &confErr)
}

func TestExtractorRunEndToEnd(t *testing.T) {
	srv, captured := fakeUpstream(t, map[string]any{
		"website_summary": map[string]any{
			"one_liner":        "Dental practice in Leeds.",
			"services_offered": []string{"implants"},
		},
		"rapport_hooks": []any{},
		"pain_points":   []any{},
		"recommended_angle": map[string]any{
			"primary_offer": "online booking",
			"cta":           "short call",
		},
	})

	extractor := NewExtractor(testConfig(srv.URL))

	out, err := extractor.Run(context.Background(), "Welcome to Brightsmile Dental")
	require.NoError(t, err)
	assert.Equal(t, "Dental practice in Leeds.", out.WebsiteSummary.OneLiner)

	// Request carries the agent1 format and the snapshot text.
	text := (*captured)["text"].(map[string]any)
	format := text["format"].(map[string]any)
	assert.Equal(t, schemas.Agent1FormatName, format["name"])

	input := (*captured)["input"].([]any)
	require.Len(t, input, 2)
	user := input[1].(map[string]any)
	userText := user["content"].([]any)[0].(map[string]any)["text"].(string)
	assert.Contains(t, userText, "Welcome to Brightsmile Dental")
}

func TestExtractorSurfacesContractViolation(t *testing.T) {
	srv, _ := fakeUpstream(t, map[string]any{
		"website_summary": map[string]any{
			"one_liner":        "Dental practice.",
			"services_offered": []string{},
		},
		// rapport_hooks missing
		"pain_points": []any{},
		"recommended_angle": map[string]any{
			"primary_offer": "x",
			"cta":           "y",
		},
	})

	extractor := NewExtractor(testConfig(srv.URL))

	_, err := extractor.Run(context.Background(), "text")
	var validationErr *schemas.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestDrafterRunBuildsLeadContext(t *testing.T) {
	srv, captured := fakeUpstream(t, map[string]any{
		"subject":     "Quick question",
		"email_body":  "Hi Dana",
		"used_signal": "No online booking",
	})

	drafter := NewDrafter(testConfig(srv.URL))

	out, err := drafter.Run(context.Background(), DraftInput{
		LeadName:     "Dana",
		Company:      "Brightsmile Dental",
		SnapshotText: "site text",
		Agent1:       &types.Agent1Output{},
	})
	require.NoError(t, err)
	assert.Equal(t, "Quick question", out.Subject)

	input := (*captured)["input"].([]any)
	userText := input[1].(map[string]any)["content"].([]any)[0].(map[string]any)["text"].(string)
	assert.Contains(t, userText, "Brightsmile Dental")
	assert.Contains(t, userText, "site text")

	_, hasTemperature := (*captured)["temperature"]
	assert.False(t, hasTemperature, "drafter uses the default temperature")
}

func TestVerifierRunSendsDraftAndLowTemperature(t *testing.T) {
	srv, captured := fakeUpstream(t, map[string]any{
		"decision": "hold",
		"issues":   []string{"claims an award the site never mentions"},
		"final_email": map[string]any{
			"subject":    "Quick question",
			"email_body": "Hi Dana",
		},
	})

	verifier := NewVerifier(testConfig(srv.URL))

	verdict, err := verifier.Run(context.Background(), VerifyInput{
		LeadName:     "Dana",
		Company:      "Brightsmile Dental",
		SnapshotText: "site text",
		Agent1:       &types.Agent1Output{},
		DraftSubject: "Award congrats",
		DraftBody:    "Congrats on the award!",
	})
	require.NoError(t, err)
	assert.Equal(t, types.DecisionHold, verdict.Decision)
	assert.Len(t, verdict.Issues, 1)

	assert.Equal(t, verifierTemperature, (*captured)["temperature"])

	input := (*captured)["input"].([]any)
	userText := input[1].(map[string]any)["content"].([]any)[0].(map[string]any)["text"].(string)
	assert.Contains(t, userText, "Award congrats")

	text := (*captured)["text"].(map[string]any)
	format := text["format"].(map[string]any)
	assert.Equal(t, schemas.Agent3FormatName, format["name"])
}

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/david/rfq-pilot/internal/analyze"
	"github.com/david/rfq-pilot/internal/decision"
)

func stubOllama(t *testing.T, response string) *OllamaClient {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"response": response,
			"done":     true,
		})
	}))
	t.Cleanup(server.Close)
	return NewOllamaClient(server.URL, "", "")
}

func TestAdvisorReviewParsesDecision(t *testing.T) {
	client := stubOllama(t, `{"final_decision": "HOLD", "reason": "SPRS posture unverified"}`)
	advisor := NewAdvisor(client, time.Second)

	advisory, err := advisor.Review(context.Background(), decision.Context{EngineRecommendation: decision.Skip})
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if advisory.FinalDecision != decision.Hold {
		t.Errorf("decision = %q", advisory.FinalDecision)
	}
	if advisory.Reason != "SPRS posture unverified" {
		t.Errorf("reason = %q", advisory.Reason)
	}
	if advisory.Fields["final_decision"] != "HOLD" {
		t.Errorf("raw fields not carried: %#v", advisory.Fields)
	}
}

func TestAdvisorReviewDegradesOnMalformedResponse(t *testing.T) {
	client := stubOllama(t, "I think you should bid on this one.")
	advisor := NewAdvisor(client, time.Second)

	if _, err := advisor.Review(context.Background(), decision.Context{}); !errors.Is(err, ErrAdvisoryUnavailable) {
		t.Fatalf("expected ErrAdvisoryUnavailable, got %v", err)
	}
}

func TestAdvisorReviewDegradesOnUnknownLabel(t *testing.T) {
	client := stubOllama(t, `{"final_decision": "MAYBE"}`)
	advisor := NewAdvisor(client, time.Second)

	if _, err := advisor.Review(context.Background(), decision.Context{}); !errors.Is(err, ErrAdvisoryUnavailable) {
		t.Fatalf("expected ErrAdvisoryUnavailable, got %v", err)
	}
}

func TestAdvisorReviewWithoutClient(t *testing.T) {
	advisor := &Advisor{}
	if _, err := advisor.Review(context.Background(), decision.Context{}); !errors.Is(err, ErrAdvisoryUnavailable) {
		t.Fatalf("expected ErrAdvisoryUnavailable, got %v", err)
	}
}

func TestParseJSONObjectSalvage(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"bare", `{"decision": "BID"}`},
		{"fenced", "```json\n{\"decision\": \"BID\"}\n```"},
		{"prose-wrapped", `Here is my analysis: {"decision": "BID"} Hope that helps.`},
		{"nested", `{"decision": "BID", "key_facts": {"quantity": "25"}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := parseJSONObject(tc.in)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if data["decision"] != "BID" {
				t.Errorf("decision = %v", data["decision"])
			}
		})
	}

	if _, err := parseJSONObject("no json here"); err == nil {
		t.Error("expected error for non-JSON input")
	}
}

func TestReviewerBackfillsSchema(t *testing.T) {
	client := stubOllama(t, `{"decision": "HOLD", "manager_explanation": "cyber exposure", "key_facts": {"quantity": "25"}}`)
	reviewer := NewReviewer(client, time.Second)

	payload, raw, err := reviewer.Review(context.Background(), "RFQ text")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if payload.Decision != decision.Hold {
		t.Errorf("decision = %q", payload.Decision)
	}

	facts := raw["key_facts"].(map[string]any)
	if facts["quantity"] != "25" {
		t.Errorf("extracted fact overwritten: %v", facts["quantity"])
	}
	for _, field := range []string{"rfq_number", "nsn", "delivery", "FOB", "FDT", "packaging", "cyber"} {
		if facts[field] != analyze.NotStated {
			t.Errorf("key fact %q not backfilled: %v", field, facts[field])
		}
	}
	risks := raw["bid_risk_and_compliance_exposure"].(map[string]any)
	for _, field := range []string{"cybersecurity", "certifications", "packaging", "FOB_FDT", "hazmat", "other"} {
		if risks[field] != analyze.NotStated {
			t.Errorf("risk field %q not backfilled: %v", field, risks[field])
		}
	}
}

func TestReviewerRejectsUnknownDecision(t *testing.T) {
	client := stubOllama(t, `{"decision": "PUNT"}`)
	reviewer := NewReviewer(client, time.Second)

	if _, _, err := reviewer.Review(context.Background(), "RFQ text"); err == nil {
		t.Fatal("expected error for unrecognized decision")
	}
}

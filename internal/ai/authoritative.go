package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/david/rfq-pilot/internal/analyze"
	"github.com/david/rfq-pilot/internal/decision"
)

const authoritativePrompt = `You are a senior U.S. government contracts analyst.

You are authorized to:
- Read and interpret raw RFQ text
- Extract quantities, delivery terms, packaging, cyber clauses
- Assess bid viability
- Decide BID, HOLD, or SKIP

You must:
- Base decisions ONLY on the document content
- Flag uncertainty explicitly
- Be conservative with compliance risks
- Populate EVERY field; write "Not stated in RFQ" where the document is silent

Output a JSON object with exactly these keys:
- "key_facts": object with "rfq_number", "nsn", "quantity", "delivery", "FOB", "FDT", "packaging", "cyber"
- "bid_risk_and_compliance_exposure": object with "cybersecurity", "certifications", "packaging", "FOB_FDT", "hazmat", "other"
- "decision": one of "BID", "HOLD", "SKIP"
- "manager_explanation": explain your decision like a government contracts manager

RFQ document:
%s`

var keyFactFields = []string{"rfq_number", "nsn", "quantity", "delivery", "FOB", "FDT", "packaging", "cyber"}

var riskFields = []string{"cybersecurity", "certifications", "packaging", "FOB_FDT", "hazmat", "other"}

// Reviewer runs the authoritative alternate path: the model reads the whole
// document and authors its own decision, following a fixed schema the
// checklist builder accepts interchangeably with the engine's shape.
type Reviewer struct {
	Client  *OllamaClient
	Timeout time.Duration
}

func NewReviewer(client *OllamaClient, timeout time.Duration) *Reviewer {
	if timeout <= 0 {
		timeout = DefaultAdvisoryTimeout
	}
	return &Reviewer{Client: client, Timeout: timeout}
}

// Review produces a fully populated authoritative payload from raw document
// text. Unlike the advisor, schema violations here are surfaced: this path
// has no deterministic result to fall back on.
func (r *Reviewer) Review(ctx context.Context, text string) (decision.Payload, map[string]any, error) {
	if r == nil || r.Client == nil {
		return decision.Payload{}, nil, errors.New("authoritative reviewer: no client configured")
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	resp, err := r.Client.GenerateCompletion(ctx, fmt.Sprintf(authoritativePrompt, text), true)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return decision.Payload{}, nil, fmt.Errorf("authoritative review timed out after %s, safe to retry: %w", r.Timeout, err)
		}
		return decision.Payload{}, nil, fmt.Errorf("authoritative review failed: %w", err)
	}

	raw, err := parseJSONObject(resp)
	if err != nil {
		return decision.Payload{}, nil, fmt.Errorf("authoritative review returned malformed JSON: %w", err)
	}
	fillSchema(raw)

	normalized := decision.Normalize(raw)
	switch normalized.Decision {
	case decision.Bid, decision.Hold, decision.Skip:
	default:
		return decision.Payload{}, nil, fmt.Errorf("authoritative review returned unrecognized decision %q", normalized.Decision)
	}

	return normalized, raw, nil
}

// fillSchema backfills the sentinel into any schema field the model left
// out, so downstream consumers never see an unset field.
func fillSchema(raw map[string]any) {
	raw["key_facts"] = fillFields(raw["key_facts"], keyFactFields)
	raw["bid_risk_and_compliance_exposure"] = fillFields(raw["bid_risk_and_compliance_exposure"], riskFields)
	if s, ok := raw["manager_explanation"].(string); !ok || s == "" {
		raw["manager_explanation"] = analyze.NotStated
	}
}

func fillFields(value any, fields []string) map[string]any {
	section, ok := value.(map[string]any)
	if !ok {
		section = make(map[string]any, len(fields))
	}
	for _, field := range fields {
		if s, ok := section[field].(string); !ok || s == "" {
			section[field] = analyze.NotStated
		}
	}
	return section
}

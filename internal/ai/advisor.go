package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/david/rfq-pilot/internal/decision"
)

// ErrAdvisoryUnavailable marks advisory failures the caller should degrade
// on: the deterministic result stands, the advisory portion is omitted.
var ErrAdvisoryUnavailable = errors.New("advisory service unavailable")

const advisorSystemPrompt = `You are a government contracting analyst assisting a deterministic pricing engine.

Rules you must follow:
- You do NOT invent facts.
- You do NOT guess quantities or prices.
- You do NOT override compliance blockers.
- You do NOT change pricing calculations.
- If required information is missing but historical clustering exists, recommend HOLD.
- You explain decisions using DLA / DIBBS / FAR logic.
- Output JSON ONLY. No prose outside JSON.
- You never parse PDFs. You only reason over provided structured context.`

const advisorTaskPrompt = `Analyze the following RFQ decision context.

Your task:
1. Determine whether the correct state is BID, SKIP, or HOLD.
2. If HOLD, explain why and what data is required.
3. Normalize win probability if data is missing but historical clustering exists.
4. Produce a contractor-ready recommendation summary.

Respond with a JSON object containing "final_decision" (BID, HOLD, or SKIP), "reason", and any supporting fields.

Decision Context:
%s`

// DefaultAdvisoryTimeout bounds one advisory round trip.
const DefaultAdvisoryTimeout = 60 * time.Second

// Advisor cross-checks the deterministic engine's recommendation. Its output
// is merged per the fusion rules, never substituted for the engine's score.
type Advisor struct {
	Client  *OllamaClient
	Timeout time.Duration
}

func NewAdvisor(client *OllamaClient, timeout time.Duration) *Advisor {
	if timeout <= 0 {
		timeout = DefaultAdvisoryTimeout
	}
	return &Advisor{Client: client, Timeout: timeout}
}

// Review asks the advisory model to assess a decision context. All failures
// wrap ErrAdvisoryUnavailable so callers degrade instead of failing the
// deterministic path.
func (a *Advisor) Review(ctx context.Context, dc decision.Context) (*decision.Advisory, error) {
	if a == nil || a.Client == nil {
		return nil, fmt.Errorf("%w: no client configured", ErrAdvisoryUnavailable)
	}

	contextJSON, err := json.MarshalIndent(dc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: marshal context: %v", ErrAdvisoryUnavailable, err)
	}

	prompt := advisorSystemPrompt + "\n\n" + fmt.Sprintf(advisorTaskPrompt, contextJSON)

	ctx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()

	resp, err := a.Client.GenerateCompletion(ctx, prompt, true)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: timed out after %s, safe to retry", ErrAdvisoryUnavailable, a.Timeout)
		}
		return nil, fmt.Errorf("%w: %v", ErrAdvisoryUnavailable, err)
	}

	raw, err := parseJSONObject(resp)
	if err != nil {
		log.Printf("advisor returned unparseable payload: %v", err)
		return nil, fmt.Errorf("%w: malformed response", ErrAdvisoryUnavailable)
	}

	normalized := decision.Normalize(raw)
	if normalized.Decision != decision.Bid && normalized.Decision != decision.Hold && normalized.Decision != decision.Skip {
		return nil, fmt.Errorf("%w: unrecognized decision %q", ErrAdvisoryUnavailable, normalized.Decision)
	}

	return &decision.Advisory{
		FinalDecision: normalized.Decision,
		Reason:        normalized.Rationale,
		Rationale:     normalized.Rationale,
		Fields:        raw,
	}, nil
}

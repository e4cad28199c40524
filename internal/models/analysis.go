package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/david/rfq-pilot/internal/analyze"
)

// RFQAnalysis is one archived analysis run: the denormalized columns the
// list view filters on, plus the full result and advisory payloads.
type RFQAnalysis struct {
	ID             uuid.UUID              `json:"id"`
	Filename       string                 `json:"filename"`
	SourceURL      string                 `json:"source_url,omitempty"`
	RFQNumber      string                 `json:"rfq_number"`
	NSN            string                 `json:"nsn"`
	Quantity       string                 `json:"quantity"`
	Score          int                    `json:"score"`
	Recommendation string                 `json:"recommendation"`
	FinalDecision  string                 `json:"final_decision"`
	Reason         string                 `json:"reason"`
	Result         analyze.AnalysisResult `json:"result"`
	Advisory       map[string]any         `json:"advisory,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

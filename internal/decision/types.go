package decision

// Decision labels. The deterministic engine and every collaborator payload
// are normalized onto these three values.
const (
	Bid  = "BID"
	Hold = "HOLD"
	Skip = "SKIP"
)

// EngineResult is the compact deterministic-engine output handed to fusion
// and to the advisory collaborator. The engine remains the source of truth;
// this record only summarizes it.
type EngineResult struct {
	RFQNumber         string            `json:"rfq_number"`
	NSN               string            `json:"nsn"`
	Quantity          string            `json:"quantity"`
	FDT               bool              `json:"fdt"`
	PackagingRequired bool              `json:"packaging_required"`
	CyberRequired     bool              `json:"cyber_required"`
	SPRSRequired      bool              `json:"sprs_required"`
	HistoricalPrices  []float64         `json:"historical_prices"`
	Score             int               `json:"score"`
	Recommendation    string            `json:"recommendation"`
	Flags             map[string]bool   `json:"flags"`
	CompanyCapability string            `json:"company_capability"`
	AutomationFields  map[string]string `json:"automation_fields"`
	ComplianceBlocker bool              `json:"compliance_blocker"`
}

// Context is the advisory collaborator's input payload.
type Context struct {
	RFQNumber            string            `json:"rfq_number"`
	NSN                  string            `json:"nsn"`
	Quantity             string            `json:"quantity"`
	FDT                  bool              `json:"fdt"`
	PackagingRequired    bool              `json:"packaging_required"`
	CyberRequired        bool              `json:"cyber_required"`
	SPRSRequired         bool              `json:"sprs_required"`
	HistoricalPrices     []float64         `json:"historical_prices"`
	EngineScore          int               `json:"engine_score"`
	EngineRecommendation string            `json:"engine_recommendation"`
	Flags                map[string]bool   `json:"flags"`
	CompanyCapability    string            `json:"company_capability"`
	AutomationFields     map[string]string `json:"automation_fields"`
}

// Advisory is a collaborator's decision payload after normalization.
type Advisory struct {
	FinalDecision string         `json:"final_decision"`
	Reason        string         `json:"reason,omitempty"`
	Rationale     string         `json:"rationale,omitempty"`
	Fields        map[string]any `json:"fields,omitempty"`
}

// Fused is the final decision artifact.
type Fused struct {
	FinalDecision string         `json:"final_decision"`
	Reason        string         `json:"reason"`
	Advisory      map[string]any `json:"advisory,omitempty"`
}

package analyze

// NotStated is the sentinel for any solicitation field the extractor could
// not resolve. Every Snapshot field is always either an extracted value or
// this string — never empty.
const NotStated = "Not stated in RFQ"

// Confidence levels for the RFQ identifier.
const (
	ConfidenceExtracted = "extracted" // primary structured pattern matched
	ConfidenceInferred  = "inferred"  // only a generic fallback matched
	ConfidenceMissing   = "missing"   // no pattern matched
)

// Snapshot holds the structured solicitation facts pulled from raw text.
type Snapshot struct {
	RFQNumber            string `json:"rfq_number"`
	RFQID                string `json:"rfq_id"`
	RFQIDConfidence      string `json:"rfq_id_confidence"`
	NSN                  string `json:"nsn"`
	Quantity             string `json:"quantity"`
	DeliveryRequirement  string `json:"delivery_requirement"`
	SetAsideStatus       string `json:"set_aside_status"`
	NAICS                string `json:"naics"`
	FOB                  string `json:"fob"`
	InspectionAcceptance string `json:"inspection_acceptance"`
	AutomatedAward       string `json:"automated_award"`
	BuyerName            string `json:"buyer_name"`
	BuyerEmail           string `json:"buyer_email"`
	BuyerPhone           string `json:"buyer_phone"`
}

// PriceIntelligence summarizes historical award pricing found in the text.
// History is nil when no price signal exists at all, which is distinct from
// an empty slice.
type PriceIntelligence struct {
	HistoricalLow       string    `json:"historical_low"`
	HistoricalHigh      string    `json:"historical_high"`
	MostRecentAward     string    `json:"most_recent_award"`
	RecommendedBidPrice string    `json:"recommended_bid_price"`
	History             []float64 `json:"history_prices"`
}

// ComplianceFlags is the fixed set of regulatory concerns. Flags are derived
// independently and are not mutually exclusive.
type ComplianceFlags struct {
	BuyAmerican           bool `json:"buy_american"`
	BerryAmendment        bool `json:"berry_amendment"`
	DomesticSourcing      bool `json:"domestic_sourcing"`
	AdditiveManufacturing bool `json:"additive_manufacturing_restriction"`
	Packaging             bool `json:"packaging"`
	Cyber                 bool `json:"cyber"`
	Hazardous             bool `json:"hazardous"`
	FDT                   bool `json:"fdt"`
}

// WinProbability is the scored viability of bidding. Score is always in
// [0,100] and Rationale lists every adjustment in evaluation order.
type WinProbability struct {
	Score            int    `json:"score"`
	Rationale        string `json:"rationale"`
	Recommendation   string `json:"recommendation"`
	TargetPriceRange string `json:"target_price_range"`
}

// AnalysisResult is the immutable aggregate produced once per document.
type AnalysisResult struct {
	Snapshot         Snapshot          `json:"snapshot"`
	ComplianceFlags  ComplianceFlags   `json:"compliance_flags"`
	PriceIntel       PriceIntelligence `json:"price_intelligence"`
	WinProbability   WinProbability    `json:"win_probability"`
	RequiredActions  []string          `json:"required_actions"`
	Risks            []string          `json:"risks"`
	Templates        map[string]string `json:"templates"`
	AutomationFields map[string]string `json:"automation_fields"`
}

// Recommendation tiers, ordered by descending score threshold.
const (
	RecommendBidHighConfidence = "Bid – High Confidence"
	RecommendBidModerate       = "Bid – Moderate Competition"
	RecommendBidCaution        = "Bid With Caution"
	RecommendSkip              = "Skip"
)

// NoSpecialRisks is emitted when no compliance flag is active.
const NoSpecialRisks = "No special risks detected beyond standard FAR/DFARS terms."

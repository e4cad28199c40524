package decision

import (
	"strings"

	"github.com/david/rfq-pilot/internal/analyze"
)

// NormalizeRecommendation collapses a human-readable recommendation tier
// into one of the three decision labels.
func NormalizeRecommendation(label string) string {
	simplified := strings.ToLower(label)
	if strings.Contains(simplified, "skip") {
		return Skip
	}
	if strings.Contains(simplified, "hold") || strings.Contains(simplified, "caution") {
		return Hold
	}
	return Bid
}

// FromAnalysis builds the compact engine result from a full analysis.
func FromAnalysis(result analyze.AnalysisResult) EngineResult {
	flags := result.ComplianceFlags
	return EngineResult{
		RFQNumber:         result.Snapshot.RFQNumber,
		NSN:               result.Snapshot.NSN,
		Quantity:          result.Snapshot.Quantity,
		FDT:               flags.FDT,
		PackagingRequired: flags.Packaging,
		CyberRequired:     flags.Cyber,
		SPRSRequired:      flags.Cyber,
		HistoricalPrices:  result.PriceIntel.History,
		Score:             result.WinProbability.Score,
		Recommendation:    NormalizeRecommendation(result.WinProbability.Recommendation),
		Flags: map[string]bool{
			"buy_american":                       flags.BuyAmerican,
			"berry_amendment":                    flags.BerryAmendment,
			"domestic_sourcing":                  flags.DomesticSourcing,
			"additive_manufacturing_restriction": flags.AdditiveManufacturing,
			"packaging":                          flags.Packaging,
			"cyber":                              flags.Cyber,
			"hazardous":                          flags.Hazardous,
			"fdt":                                flags.FDT,
		},
		CompanyCapability: result.WinProbability.Rationale,
		AutomationFields:  result.AutomationFields,
		ComplianceBlocker: false,
	}
}

// BuildContext prepares the advisory collaborator's input payload.
func BuildContext(engine EngineResult) Context {
	return Context{
		RFQNumber:            engine.RFQNumber,
		NSN:                  engine.NSN,
		Quantity:             engine.Quantity,
		FDT:                  engine.FDT,
		PackagingRequired:    engine.PackagingRequired,
		CyberRequired:        engine.CyberRequired,
		SPRSRequired:         engine.SPRSRequired,
		HistoricalPrices:     engine.HistoricalPrices,
		EngineScore:          engine.Score,
		EngineRecommendation: engine.Recommendation,
		Flags:                engine.Flags,
		CompanyCapability:    engine.CompanyCapability,
		AutomationFields:     engine.AutomationFields,
	}
}

package checklist

import (
	"fmt"
	"strings"

	"github.com/david/rfq-pilot/internal/analyze"
	"github.com/david/rfq-pilot/internal/decision"
)

// Fixed hold-resolution items. Each regulatory concern maps to exactly one
// item; triggers that fire twice for the same concern are deduplicated by
// question text, first trigger's citation wins.
var (
	itemSPRS = Item{
		ID:       "sprs_score",
		Question: "Do you currently have a valid NIST SP 800-171 assessment posted in SPRS?",
		Blocking: true,
		Clause:   "DFARS 252.204-7019 / 7020",
	}
	itemCMMC = Item{
		ID:       "cmmc_l2",
		Question: "Have you completed a CMMC Level 2 self-assessment?",
		Blocking: true,
		Clause:   "CMMC Level 2 / RD004",
	}
	itemJCP = Item{
		ID:       "jcp",
		Question: "Is your organization JCP certified for export-controlled technical data?",
		Blocking: true,
		Clause:   "ITAR / Export Control",
	}
	itemPackaging = Item{
		ID:       "packaging",
		Question: "Can your supplier comply with MIL-STD-129 and DLA packaging requirements?",
	}
	itemFDT = Item{
		ID:       "fdt",
		Question: "Do you understand and have experience with FOB Origin under FDT?",
	}
	itemHazmat = Item{
		ID:       "hazmat",
		Question: "Can you provide SDS/MSDS documentation for hazardous material handling?",
	}
)

var (
	sprsKeywords      = []string{"sprs", "800-171", "nist", "7019", "7020", "7012"}
	cmmcKeywords      = []string{"cmmc", "level 2", "level ii", "rd004", "rd 004"}
	exportKeywords    = []string{"jcp", "export", "itar", "ear", "usml", "dfars 252.204-7008"}
	packagingKeywords = []string{"mil-std-129", "astm d3951", "rp001", "packaging"}
	fdtKeywords       = []string{"fdt", "first destination transportation", "fob origin", "origin"}
	hazmatKeywords    = []string{"hazard", "sds", "msds"}
)

// FromEngine derives the hold-resolution checklist from the deterministic
// engine's compliance flags. Non-HOLD decisions never get a checklist.
func FromEngine(decisionLabel string, flags map[string]bool) []Item {
	if strings.ToUpper(decisionLabel) != decision.Hold {
		return nil
	}

	var items []Item
	if flags["cyber"] {
		items = appendUnique(items, itemSPRS)
		items = appendUnique(items, itemCMMC)
	}
	if flags["packaging"] {
		items = appendUnique(items, itemPackaging)
	}
	if flags["fdt"] {
		items = appendUnique(items, itemFDT)
	}
	if flags["hazardous"] {
		items = appendUnique(items, itemHazmat)
	}
	return items
}

// FromPayload derives the checklist from a normalized collaborator payload
// by scanning its key-fact and risk-exposure text for trigger keywords.
// Triggers evaluate in fixed order: cyber, export control, packaging,
// shipping term, hazardous.
func FromPayload(p decision.Payload) []Item {
	if strings.ToUpper(p.Decision) != decision.Hold {
		return nil
	}

	cyberFact := populated(p.KeyFacts["cyber"])
	cyberText := cyberFact + " " + populated(p.RiskExposure["cybersecurity"])
	certText := populated(p.RiskExposure["certifications"]) + " " + populated(p.RiskExposure["other"])
	packagingText := populated(p.RiskExposure["packaging"]) + " " + populated(p.KeyFacts["packaging"])
	fdtText := strings.Join([]string{
		populated(p.RiskExposure["FOB_FDT"]),
		populated(p.KeyFacts["FDT"]),
		populated(p.KeyFacts["FOB"]),
	}, " ")
	hazmatText := populated(p.RiskExposure["hazmat"])

	var items []Item
	if containsAny(cyberText, sprsKeywords) || strings.TrimSpace(cyberFact) != "" {
		items = appendUnique(items, itemSPRS)
	}
	if containsAny(cyberText, cmmcKeywords) {
		items = appendUnique(items, itemCMMC)
	}
	if containsAny(certText, exportKeywords) {
		items = appendUnique(items, itemJCP)
	}
	if containsAny(packagingText, packagingKeywords) {
		items = appendUnique(items, itemPackaging)
	}
	if containsAny(fdtText, fdtKeywords) {
		items = appendUnique(items, itemFDT)
	}
	if containsAny(hazmatText, hazmatKeywords) {
		items = appendUnique(items, itemHazmat)
	}
	return items
}

// NormalizeItems maps an externally supplied checklist (with historical
// field variants such as blocks_bid_if_no) onto canonical items. The input
// is the decoded JSON list as-is; non-object entries and entries without a
// question are dropped, and a missing id falls back to the slugified
// question text.
func NormalizeItems(raw []any) []Item {
	var items []Item
	for _, v := range raw {
		entry, ok := v.(map[string]any)
		if !ok {
			continue
		}
		question, _ := entry["question"].(string)
		if question == "" {
			continue
		}
		blocking, ok := entry["blocking"].(bool)
		if !ok {
			blocking, _ = entry["blocks_bid_if_no"].(bool)
		}
		id, _ := entry["id"].(string)
		if id == "" {
			id = question
		}
		id = strings.ReplaceAll(strings.ToLower(id), " ", "_")
		clause, _ := entry["clause"].(string)
		items = appendUnique(items, Item{
			ID:       id,
			Question: question,
			Blocking: blocking,
			Clause:   clause,
		})
	}
	return items
}

// Review builds the post-analysis review checklist: one question per
// reported risk and one per active compliance requirement, plus a summary
// line naming the solicitation.
func Review(result analyze.AnalysisResult, idPrefix string) (string, []Item) {
	if idPrefix == "" {
		idPrefix = "check"
	}

	var items []Item
	riskIndex := 1
	for _, risk := range result.Risks {
		if risk == "" || risk == analyze.NoSpecialRisks {
			continue
		}
		items = append(items, Item{
			ID:       fmt.Sprintf("%s-risk-%d", idPrefix, riskIndex),
			Question: fmt.Sprintf("Is the team prepared to mitigate this risk: %s?", risk),
			Category: "risk",
		})
		riskIndex++
	}

	reqIndex := 1
	for _, req := range complianceRequirements(result.ComplianceFlags) {
		items = append(items, Item{
			ID:       fmt.Sprintf("%s-compliance-%d", idPrefix, reqIndex),
			Question: fmt.Sprintf("Can we meet the %s requirement?", req),
			Category: "compliance",
		})
		reqIndex++
	}

	return reviewSummary(result.Snapshot), items
}

func complianceRequirements(flags analyze.ComplianceFlags) []string {
	var reqs []string
	if flags.BuyAmerican {
		reqs = append(reqs, "Buy American Act")
	}
	if flags.BerryAmendment {
		reqs = append(reqs, "Berry Amendment")
	}
	if flags.DomesticSourcing {
		reqs = append(reqs, "Domestic sourcing")
	}
	if flags.AdditiveManufacturing {
		reqs = append(reqs, "Additive manufacturing restriction")
	}
	if flags.Packaging {
		reqs = append(reqs, "Packaging")
	}
	if flags.Cyber {
		reqs = append(reqs, "Cybersecurity (NIST/SPRS)")
	}
	if flags.Hazardous {
		reqs = append(reqs, "Hazardous material handling")
	}
	if flags.FDT {
		reqs = append(reqs, "First Destination Transportation (FDT)")
	}
	return reqs
}

func reviewSummary(snapshot analyze.Snapshot) string {
	summary := "Checklist for solicitation review"
	if snapshot.RFQNumber != "" && snapshot.RFQNumber != analyze.NotStated {
		summary = "Checklist for RFQ " + snapshot.RFQNumber
	}
	if snapshot.NSN != "" && snapshot.NSN != analyze.NotStated {
		summary += " (NSN " + snapshot.NSN + ")"
	}
	return summary
}

func containsAny(text string, keywords []string) bool {
	lowered := strings.ToLower(text)
	for _, keyword := range keywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

// populated filters the not-stated sentinel so it cannot trigger a
// checklist item on its own.
func populated(value string) string {
	if strings.TrimSpace(value) == analyze.NotStated {
		return ""
	}
	return value
}

func appendUnique(items []Item, item Item) []Item {
	for _, existing := range items {
		if existing.Question == item.Question {
			return items
		}
	}
	return append(items, item)
}

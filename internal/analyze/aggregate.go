package analyze

import (
	"fmt"
	"strings"
)

// Analyze runs the full deterministic pipeline over raw solicitation text.
// Order matters: the snapshot is parsed first because price weighting needs
// the requested quantity. The returned result is complete — construction is
// all-or-nothing and no field is left unset.
func Analyze(text string) AnalysisResult {
	snap := ParseSnapshot(text)
	price := ParsePriceHistory(text, snap.Quantity)
	flags := ParseComplianceFlags(text)
	win := ComputeViability(snap, price, flags)

	return AnalysisResult{
		Snapshot:         snap,
		ComplianceFlags:  flags,
		PriceIntel:       price,
		WinProbability:   win,
		RequiredActions:  buildRequiredActions(snap, flags),
		Risks:            buildRisks(flags),
		Templates:        buildTemplates(snap),
		AutomationFields: buildAutomationFields(snap, win),
	}
}

func buildRequiredActions(snap Snapshot, flags ComplianceFlags) []string {
	actions := []string{
		"Confirm traceability to OEM or approved source if applicable.",
		"Verify ability to meet stated delivery requirement and update lead time assumptions.",
	}
	if flags.BuyAmerican || flags.BerryAmendment || flags.DomesticSourcing {
		actions = append(actions, "Confirm domestic content/Berry compliance with suppliers.")
	}
	if flags.Packaging {
		actions = append(actions, "Validate packaging plan against MIL-STD-129 / ASTM D3951 / RP001 details.")
	}
	if flags.Cyber {
		actions = append(actions, "Ensure current NIST SP 800-171 self-assessment is posted in SPRS.")
	}
	if flags.FDT {
		actions = append(actions, "Include FDT freight assumptions in pricing model.")
	}
	if flags.Hazardous {
		actions = append(actions, "Collect and submit required SDS/MSDS documentation.")
	}
	if strings.EqualFold(snap.FOB, "origin") {
		actions = append(actions, "Confirm origin shipping point and estimate transportation costs.")
	}
	return actions
}

func buildRisks(flags ComplianceFlags) []string {
	var risks []string
	if flags.BuyAmerican {
		risks = append(risks, "Buy American Act applies; foreign sourcing restricted.")
	}
	if flags.BerryAmendment {
		risks = append(risks, "Berry Amendment triggers U.S. specialty metal/textile sourcing.")
	}
	if flags.AdditiveManufacturing {
		risks = append(risks, "Additive manufacturing prohibited or restricted.")
	}
	if flags.Packaging {
		risks = append(risks, "Packaging must follow MIL-STD-129 / ASTM D3951 / RP001.")
	}
	if flags.Cyber {
		risks = append(risks, "Cyber clauses (NIST SP 800-171 / SPRS) included.")
	}
	if flags.Hazardous {
		risks = append(risks, "Hazardous material handling/SDS required.")
	}
	if flags.FDT {
		risks = append(risks, "First Destination Transportation impacts freight planning.")
	}
	if len(risks) == 0 {
		risks = append(risks, NoSpecialRisks)
	}
	return risks
}

func buildTemplates(snap Snapshot) map[string]string {
	rfq := snap.RFQNumber
	buyer := snap.BuyerName
	if buyer == NotStated {
		buyer = "Buyer"
	}

	buyerQuestion := fmt.Sprintf(
		"Subject: Clarification Request – RFQ %s\n"+
			"Dear %s,\n\n"+
			"We are reviewing RFQ %s and have a quick clarification request to ensure a responsive offer. "+
			"Could you please confirm: (1) Packaging standard and level (e.g., MIL-STD-129/ASTM D3951/RP001), "+
			"(2) Any approved sources or OEM part numbers tied to the NSN, and (3) Whether FDT applies to this buy? "+
			"We will incorporate your guidance and submit our quote promptly.\n\nThank you,\n[Your Name]\n[Company]",
		rfq, buyer, rfq)

	traceability := fmt.Sprintf(
		"Hello Supplier,\n\nWe are preparing a quote for RFQ %s and need full traceability. "+
			"Please provide current lead time, unit pricing (FOB as specified), and traceability to OEM/authorized distributor. "+
			"Include C of C details, shelf life (if applicable), and packaging compliance confirmation.\n\nThank you,\n[Your Name]",
		rfq)

	postAward := "Post-Award Readiness:\n" +
		"- Confirm award quantity and delivery schedule.\n" +
		"- Lock supplier PO with required domestic/traceability terms.\n" +
		"- Validate packaging/labeling against MIL-STD-129 / ASTM D3951 / RP001.\n" +
		"- Upload NIST SP 800-171 score to SPRS if required.\n" +
		"- Align shipping plan with FOB/FDT instructions.\n" +
		"- Prepare invoice and WAWF/iRAPT submission steps."

	return map[string]string{
		"buyer_question_email":          buyerQuestion,
		"supplier_traceability_request": traceability,
		"post_award_readiness":          postAward,
	}
}

func buildAutomationFields(snap Snapshot, win WinProbability) map[string]string {
	return map[string]string{
		"rfq_number":           snap.RFQNumber,
		"nsn":                  snap.NSN,
		"quantity":             snap.Quantity,
		"delivery_requirement": snap.DeliveryRequirement,
		"set_aside_status":     snap.SetAsideStatus,
		"naics":                snap.NAICS,
		"buyer_email":          snap.BuyerEmail,
		"target_price_range":   win.TargetPriceRange,
	}
}

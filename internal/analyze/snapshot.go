package analyze

import (
	"regexp"
	"strings"
)

// requestNoRe is the primary structured pattern: the numbered "REQUEST NO."
// block at the top of a DLA 1449/DIBBS form. A hit here earns the
// "extracted" confidence level.
var requestNoRe = regexp.MustCompile(`(?i)1\.?\s*REQUEST\s+NO\.?[:#\s]*([A-Z0-9-]+)`)

// rfqLabeledPatterns are structured identifier patterns: the value is tied
// to an explicit solicitation label. rfqTokenFallbacks are the generic
// alphanumeric shapes tried last; a hit there is only "inferred".
var rfqLabeledPatterns = []fieldPattern{
	pattern(`(?:Solicitation|RFQ|Request for Quotation)[:#\s]+([A-Z0-9-]{5,})`),
}

var rfqTokenFallbacks = []fieldPattern{
	pattern(`\b(SPE\w+-\d{2}-[A-Z]-\d{4,})\b`),
}

var nsnPatterns = []fieldPattern{
	pattern(`\b(\d{4}-\d{2}-\d{3}-\d{4})\b`),
	pattern(`NSN[:#\s]+(\d{4}-\d{2}-\d{3}-\d{4})`),
	pattern(`\b(\d{13})\b`),
}

var quantityDirectPatterns = []fieldPattern{
	pattern(`CLIN\s+0*0*1[\s\S]{0,350}?(?:QTY|QUANTITY)[:\s]+([0-9,]+)`),
	pattern(`PRLI\s+0*0*1[\s\S]{0,350}?(?:QTY|QUANTITY)[:\s]+([0-9,]+)`),
	pattern(`Item\s*0001[\s\S]{0,350}?(?:QTY|QUANTITY)[:\s]+([0-9,]+)`),
	pattern(`\bQUANTITY[:\s]+([0-9,]+)\b`),
}

var quantityLoosePatterns = []fieldPattern{
	pattern(`(?:Quantity|QTY)[:#\s]+([0-9,]+)\b`),
	pattern(`\bQTY\s+([0-9,]+)\s+(?:EA|Each|PG|KT|BX)\b`),
}

var deliveryPatterns = []fieldPattern{
	pattern(`Required Delivery(?: Date)?[:#\s]+([^\n]+)`),
	pattern(`Delivery\s+within\s+([^\n]+)`),
	pattern(`\b(\d{1,3}\s*days\s*(?:ARO|ADC|ADO))\b`),
	pattern(`Delivery\s+required[:\s]+(\d{1,3}\s*days\s*(?:ARO|ADC|ADO))`),
}

var setAsidePatterns = []fieldPattern{
	pattern(`Set[- ]Aside[:#\s]+([^\n]+)`),
	pattern(`\b(Set ?Aside: ?(?:Small Business|Total SB|8\(a\)|SDVOSB|WOSB|HUBZone|Full and Open))`),
}

var inspectionPatterns = []fieldPattern{
	pattern(`Inspection/Acceptance[:#\s]+([^\n]+)`),
	pattern(`INSPECTION[:#\s]+([^\n]+)`),
	pattern(`INSP/ACCP[:#\s]+([^\n]+)`),
}

var (
	clinLineRe       = regexp.MustCompile(`(?i)\b(?:CLIN|PRLI)\s+0*0*1\b|\bItem\s*0*0*1\b`)
	qtyInWindowRe    = regexp.MustCompile(`(?i)(?:QTY|QUANTITY)[:\s]+([0-9,]+)`)
	automatedAwardRe = regexp.MustCompile(`(?i)automated award|auto[- ]award|fast pay`)
	natDefenseRe     = regexp.MustCompile(`(?i)cert\.?\s*for\s*nat\.?\s*def`)
	fullOpenRe       = regexp.MustCompile(`(?i)full\s+and\s+open`)
	hubZoneRe        = regexp.MustCompile(`(?i)HUBZone price (evaluation )?preference`)
)

// ParseSnapshot extracts the solicitation facts from raw text. Every field
// is populated with either a value or the NotStated sentinel; extraction
// never fails.
func ParseSnapshot(text string) Snapshot {
	rfqNumber, confidence := extractRFQNumber(text)

	rfqID := rfqNumber
	if rfqID == NotStated {
		rfqID = "RFQ-UNKNOWN"
	}

	snap := Snapshot{
		RFQNumber:            rfqNumber,
		RFQID:                rfqID,
		RFQIDConfidence:      confidence,
		NSN:                  firstMatchOr(text, nsnPatterns, NotStated),
		Quantity:             parseCLINQuantity(text),
		DeliveryRequirement:  parseDelivery(text),
		SetAsideStatus:       normalizeSetAside(firstMatchOr(text, setAsidePatterns, NotStated), text),
		NAICS:                firstMatchOr(text, []fieldPattern{pattern(`NAICS[:#\s]+(\d{5,6})`)}, NotStated),
		FOB:                  parseFOB(text),
		InspectionAcceptance: firstMatchOr(text, inspectionPatterns, NotStated),
		AutomatedAward:       NotStated,
		BuyerName:            firstMatchOr(text, buyerNamePatterns, NotStated),
		BuyerEmail:           firstMatchOr(text, []fieldPattern{pattern(`([\w.-]+@[\w.-]+\.[A-Za-z]{2,})`)}, NotStated),
		BuyerPhone:           firstMatchOr(text, buyerPhonePatterns, NotStated),
	}

	if automatedAwardRe.MatchString(text) {
		snap.AutomatedAward = "Eligible"
	}

	return snap
}

var buyerNamePatterns = []fieldPattern{
	pattern(`Point of Contact[:#\s]+([^\n<]+)`),
	pattern(`Buyer[:#\s]+([^\n<]+)`),
}

var buyerPhonePatterns = []fieldPattern{
	pattern(`(\(?\d{3}\)?[-\s]\d{3}[-\s]\d{4})`),
	pattern(`(\d{3}[-\s]\d{4}\s+ext\.?\s*\d+)`),
}

// extractRFQNumber tries the structured patterns first (numbered request
// block, then a labeled solicitation number), then the generic token
// fallback, and reports which level matched.
func extractRFQNumber(text string) (string, string) {
	if m := requestNoRe.FindStringSubmatch(text); m != nil {
		value := strings.Trim(strings.TrimSpace(m[1]), " .:-")
		if value != "" {
			return value, ConfidenceExtracted
		}
	}
	if v := firstMatch(text, rfqLabeledPatterns); v != "" {
		return v, ConfidenceExtracted
	}
	if v := firstMatch(text, rfqTokenFallbacks); v != "" {
		return v, ConfidenceInferred
	}
	return NotStated, ConfidenceMissing
}

// parseCLINQuantity looks for the first line item's quantity: bounded-window
// patterns anchored on CLIN/PRLI/Item 0001 first, then a line-window scan
// for tables that OCR broke across lines, then the loose generic patterns.
func parseCLINQuantity(text string) string {
	if v := firstMatch(text, quantityDirectPatterns); v != "" {
		return v
	}

	lines := nonEmptyLines(text)
	for i, line := range lines {
		if !clinLineRe.MatchString(line) {
			continue
		}
		end := i + 10
		if end > len(lines) {
			end = len(lines)
		}
		window := strings.Join(lines[i:end], " ")
		if m := qtyInWindowRe.FindStringSubmatch(window); m != nil {
			return m[1]
		}
	}

	return firstMatchOr(text, quantityLoosePatterns, NotStated)
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(raw); s != "" {
			lines = append(lines, s)
		}
	}
	return lines
}

func parseDelivery(text string) string {
	primary := firstMatchOr(text, deliveryPatterns, NotStated)
	needShip := firstMatch(text, []fieldPattern{pattern(`Need Ship Date[:#\s]+([0-9/]{6,10})`)})
	rdd := firstMatch(text, []fieldPattern{pattern(`Original RDD[:#\s]+([0-9/]{6,10})`)})

	var parts []string
	if primary != NotStated {
		parts = append(parts, primary)
	}
	if needShip != "" {
		parts = append(parts, "Need Ship Date: "+needShip)
	}
	if rdd != "" {
		parts = append(parts, "Original RDD: "+rdd)
	}
	if len(parts) == 0 {
		return NotStated
	}
	return strings.Join(parts, " | ")
}

func parseFOB(text string) string {
	return firstMatchOr(text, []fieldPattern{
		pattern(`FOB[:#\s]+(Origin|Destination)`),
		pattern(`\bFOB\s+(Origin|Destination)\b`),
	}, NotStated)
}

// normalizeSetAside rewrites raw set-aside text for known DIBBS phrasings:
// the national-defense certification and HUBZone price preference appear as
// separate clauses, not in the set-aside field itself.
func normalizeSetAside(raw, text string) string {
	normalized := raw
	if natDefenseRe.MatchString(text) {
		normalized = "Full & Open (National Defense Priority)"
	} else if fullOpenRe.MatchString(text) {
		normalized = "Full & Open"
	}

	if hubZoneRe.MatchString(text) {
		const suffix = " with HUBZone price preference"
		if normalized != NotStated && !strings.Contains(normalized, suffix) {
			normalized += suffix
		} else if normalized == NotStated {
			normalized = "Full & Open" + suffix
		}
	}

	return normalized
}

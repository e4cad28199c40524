package analyze

import (
	"strconv"
	"strings"
)

const baselineScore = 60

// ComputeViability scores the bid from the extracted snapshot, price
// history and compliance flags. Adjustments run in a fixed order (price,
// quantity, flags, automated award) so the rationale is reproducible for
// identical inputs. The final score is clamped to [0,100].
func ComputeViability(snap Snapshot, price PriceIntelligence, flags ComplianceFlags) WinProbability {
	score := baselineScore
	var rationale []string

	if len(price.History) > 0 {
		high := maxOf(price.History)
		if high > 0 {
			volatility := (high - minOf(price.History)) / high
			if volatility < 0.2 {
				score += 6
				rationale = append(rationale, "Stable historical pricing window.")
			} else if volatility > 0.45 {
				score -= 3
				rationale = append(rationale, "Pricing shows high volatility.")
			}
		}
		score += 4
		rationale = append(rationale, "Price history available for targeting.")
	} else {
		rationale = append(rationale, "No price history found; more market research needed.")
	}

	if qty, err := strconv.Atoi(strings.ReplaceAll(snap.Quantity, ",", "")); err == nil {
		switch {
		case qty <= 50:
			score += 4
			rationale = append(rationale, "Manageable quantity supports quick delivery.")
		case qty >= 500:
			score -= 5
			rationale = append(rationale, "High quantity may stress supply chain.")
		default:
			score += 3
			rationale = append(rationale, "Known production lot size aligns with historical buys.")
		}
	} else {
		score -= 6
		rationale = append(rationale, "Quantity not explicit; probability reduced until parsed.")
	}

	if flags.Cyber {
		score -= 7
		rationale = append(rationale, "Cyber clauses present; ensure SPRS/NIST readiness.")
	}
	if flags.BuyAmerican || flags.BerryAmendment {
		score -= 5
		rationale = append(rationale, "Domestic sourcing requirements apply.")
	}
	if flags.Packaging {
		score -= 3
		rationale = append(rationale, "Specific packaging standards called out.")
	}
	if flags.FDT {
		score -= 2
		rationale = append(rationale, "FDT applies; include transportation in price.")
	}

	if snap.AutomatedAward == "Eligible" {
		score += 4
		rationale = append(rationale, "Eligible for automated award/fast pay.")
	}

	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}

	targetRange := price.RecommendedBidPrice
	if targetRange == NotEnoughData && len(price.History) > 0 {
		targetRange = formatUSD(price.History[len(price.History)-1]) + " (match last known award)"
	}

	return WinProbability{
		Score:            score,
		Rationale:        strings.Join(rationale, " "),
		Recommendation:   recommendationForScore(score),
		TargetPriceRange: targetRange,
	}
}

// recommendationForScore maps a clamped score onto the four ordered tiers.
func recommendationForScore(score int) string {
	switch {
	case score >= 80:
		return RecommendBidHighConfidence
	case score >= 65:
		return RecommendBidModerate
	case score >= 50:
		return RecommendBidCaution
	default:
		return RecommendSkip
	}
}

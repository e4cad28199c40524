package analyze

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// NotEnoughData is the recommended-bid sentinel when no price signal exists.
const NotEnoughData = "Not enough data"

// unitPriceCeiling rejects bulk/extended totals misread as unit prices.
// DIBBS procurement-history lines quote unit prices; anything above this is
// assumed to be an extended amount.
const unitPriceCeiling = 200

// bandPercent is the half-width of the recommended bid band around the
// quantity-weighted median.
const bandPercent = 0.035

var (
	historyLineRe = regexp.MustCompile(`(?i)(\d{1,4})\s+[A-Z]*\s*\$?(\d{1,3}\.\d{2})`)
	looseQtyRe    = regexp.MustCompile(`(?i)(\d{1,4})\s*(?:EA|Each|PG|KT|BX)?[^\n]{0,25}?\$\s*([0-9]{1,3}(?:\.\d{2})?)`)
	currencyRe    = regexp.MustCompile(`\$\s*([0-9]{1,3}(?:,[0-9]{3})*\.\d{2})`)
	digitRe       = regexp.MustCompile(`\d`)
)

type historyEntry struct {
	qty   int
	price float64
}

// ParsePriceHistory scans text for historical quantity/unit-price pairs and
// computes the recommended bid band. rfqQuantity is the current requested
// quantity as extracted (may be non-numeric; that only disables proximity
// weighting, never fails). Unparsable numeric tokens are skipped.
func ParsePriceHistory(text, rfqQuantity string) PriceIntelligence {
	structured := extractProcurementHistory(text)

	var currentQty *int
	if rfqQuantity != "" {
		if v, err := strconv.Atoi(strings.ReplaceAll(rfqQuantity, ",", "")); err == nil {
			currentQty = &v
		}
	}

	var history []float64
	var entries []historyEntry

	if len(structured) > 0 {
		entries = structured
		for _, e := range structured {
			history = append(history, e.price)
		}
	} else {
		history = looseScan(text)
	}

	intel := PriceIntelligence{
		HistoricalLow:       NotStated,
		HistoricalHigh:      NotStated,
		MostRecentAward:     NotStated,
		RecommendedBidPrice: NotEnoughData,
		History:             history,
	}
	if len(history) == 0 {
		return intel
	}

	intel.HistoricalLow = formatUSD(minOf(history))
	intel.HistoricalHigh = formatUSD(maxOf(history))
	intel.MostRecentAward = formatUSD(history[len(history)-1])

	// Weight toward awards whose quantity is closest to the current buy;
	// without per-entry quantities fall back to the whole history.
	focus := history
	if len(entries) > 0 && currentQty != nil {
		byProximity := make([]historyEntry, len(entries))
		copy(byProximity, entries)
		sort.SliceStable(byProximity, func(i, j int) bool {
			return abs(byProximity[i].qty-*currentQty) < abs(byProximity[j].qty-*currentQty)
		})
		n := len(byProximity)
		if n > 5 {
			n = 5
		}
		focus = nil
		for _, e := range byProximity[:n] {
			focus = append(focus, e.price)
		}
	}

	target := median(focus)
	low := round2(target * (1 - bandPercent))
	high := round2(target * (1 + bandPercent))
	intel.RecommendedBidPrice = fmt.Sprintf("%s - %s", formatUSD(low), formatUSD(high))

	// Trim check runs against the full-history median, not the proximity-
	// filtered one.
	if high > median(history)*1.25 {
		intel.RecommendedBidPrice += " (trimmed for historical alignment)"
	}

	return intel
}

// extractProcurementHistory is the structured pass: a bounded window after
// the "procurement history" heading, line by line, unit prices only.
func extractProcurementHistory(text string) []historyEntry {
	scoped := text
	if start := strings.Index(strings.ToLower(text), "procurement history"); start != -1 {
		end := start + 3000
		if end > len(text) {
			end = len(text)
		}
		scoped = text[start:end]
	}

	var entries []historyEntry
	for _, line := range strings.Split(scoped, "\n") {
		if !digitRe.MatchString(line) {
			continue
		}
		for _, m := range historyLineRe.FindAllStringSubmatch(line, -1) {
			qty, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			price, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			if price <= unitPriceCeiling {
				entries = append(entries, historyEntry{qty: qty, price: price})
			}
		}
	}
	return entries
}

// looseScan is the fallback pass over all currency-like tokens. Extended
// totals are divided by quantity to estimate a unit price; repeated values
// are deduplicated.
func looseScan(text string) []float64 {
	var raw []float64
	var candidates []float64

	for _, m := range looseQtyRe.FindAllStringSubmatch(text, -1) {
		qty, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		amount, err := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", ""), 64)
		if err != nil {
			continue
		}
		if amount <= unitPriceCeiling {
			raw = append(raw, amount)
			candidates = append(candidates, amount)
		} else if qty > 0 {
			if unit := round2(amount / float64(qty)); unit <= unitPriceCeiling {
				candidates = append(candidates, unit)
			}
		}
	}

	for _, m := range currencyRe.FindAllStringSubmatch(text, -1) {
		price, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		if price <= unitPriceCeiling {
			raw = append(raw, price)
			candidates = append(candidates, price)
		}
	}

	seen := make(map[float64]bool)
	var deduped []float64
	for _, p := range candidates {
		if !seen[p] {
			deduped = append(deduped, p)
			seen[p] = true
		}
	}

	if len(deduped) > 0 {
		return deduped
	}
	return raw
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func formatUSD(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	// Insert thousands separators into the integer part.
	dot := strings.Index(s, ".")
	intPart, frac := s[:dot], s[dot:]
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return "$" + b.String() + frac
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

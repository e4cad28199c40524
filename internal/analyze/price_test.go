package analyze

import (
	"strconv"
	"strings"
	"testing"
)

func TestParsePriceHistory_NoCurrencyTokens(t *testing.T) {
	intel := ParsePriceHistory("no pricing information anywhere", "10")
	if intel.History != nil {
		t.Fatalf("expected nil history, got %v", intel.History)
	}
	if intel.RecommendedBidPrice != NotEnoughData {
		t.Fatalf("expected %q, got %q", NotEnoughData, intel.RecommendedBidPrice)
	}
	if intel.HistoricalLow != NotStated || intel.HistoricalHigh != NotStated || intel.MostRecentAward != NotStated {
		t.Fatalf("expected sentinels, got %+v", intel)
	}
}

func TestParsePriceHistory_StructuredHistoryProximityBand(t *testing.T) {
	text := strings.Join([]string{
		"PROCUREMENT HISTORY",
		"10 EA $45.00",
		"12 EA $47.50",
		"8 EA $44.00",
	}, "\n")

	intel := ParsePriceHistory(text, "10")
	if intel.HistoricalLow != "$44.00" {
		t.Fatalf("expected $44.00, got %s", intel.HistoricalLow)
	}
	if intel.HistoricalHigh != "$47.50" {
		t.Fatalf("expected $47.50, got %s", intel.HistoricalHigh)
	}
	if intel.MostRecentAward != "$44.00" {
		t.Fatalf("expected $44.00, got %s", intel.MostRecentAward)
	}
	// All three entries fall inside the proximity window, so the band
	// centers on their median ($45.00) with a ±3.5% spread.
	low, high := parseBand(t, intel.RecommendedBidPrice)
	if low > high {
		t.Fatalf("low %f exceeds high %f", low, high)
	}
	mid := (low + high) / 2
	if mid < 44.9 || mid > 45.1 {
		t.Fatalf("band midpoint %f not near median 45.00 (%s)", mid, intel.RecommendedBidPrice)
	}
	if high-low < 2.5 || high-low > 3.8 {
		t.Fatalf("band width %f outside ±3.5%% expectation (%s)", high-low, intel.RecommendedBidPrice)
	}
}

func TestParsePriceHistory_PlausibilityCeilingRejectsTotals(t *testing.T) {
	// $4,500.00 is an extended total, not a unit price; the structured
	// pass must reject it and the loose pass estimates per-unit instead.
	text := "100 EA at a total of $4,500.00"
	intel := ParsePriceHistory(text, "100")
	for _, p := range intel.History {
		if p > 200 {
			t.Fatalf("ceiling violated: %v", intel.History)
		}
	}
}

func TestParsePriceHistory_LooseScanDeduplicates(t *testing.T) {
	text := "Unit price $45.00 each. Repeat: $45.00. Also seen $47.50."
	intel := ParsePriceHistory(text, "")
	seen := make(map[float64]int)
	for _, p := range intel.History {
		seen[p]++
		if seen[p] > 1 {
			t.Fatalf("duplicate price %v in %v", p, intel.History)
		}
	}
}

func TestParsePriceHistory_UnparsableQuantityStillWorks(t *testing.T) {
	text := "PROCUREMENT HISTORY\n10 EA $45.00\n12 EA $47.50"
	intel := ParsePriceHistory(text, "Not stated in RFQ")
	if len(intel.History) != 2 {
		t.Fatalf("expected 2 prices, got %v", intel.History)
	}
	if intel.RecommendedBidPrice == NotEnoughData {
		t.Fatal("expected a band despite unparsable quantity")
	}
}

func TestParsePriceHistory_TrimAnnotation(t *testing.T) {
	// Proximity picks the five entries closest to qty 200 — the expensive
	// outliers — pushing the band high above 125% of the full median.
	text := strings.Join([]string{
		"PROCUREMENT HISTORY",
		"200 EA $120.00",
		"210 EA $125.00",
		"190 EA $130.00",
		"205 EA $122.00",
		"195 EA $128.00",
		"10 EA $20.00",
		"12 EA $21.00",
		"8 EA $19.00",
		"11 EA $22.00",
		"9 EA $20.50",
		"10 EA $21.50",
	}, "\n")

	intel := ParsePriceHistory(text, "200")
	if !strings.HasSuffix(intel.RecommendedBidPrice, "(trimmed for historical alignment)") {
		t.Fatalf("expected trim annotation, got %s", intel.RecommendedBidPrice)
	}
}

func parseBand(t *testing.T, band string) (float64, float64) {
	t.Helper()
	band = strings.TrimSuffix(band, " (trimmed for historical alignment)")
	parts := strings.Split(band, " - ")
	if len(parts) != 2 {
		t.Fatalf("unexpected band format: %s", band)
	}
	return parseUSD(t, parts[0]), parseUSD(t, parts[1])
}

func parseUSD(t *testing.T, s string) float64 {
	t.Helper()
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		t.Fatalf("bad currency value %q: %v", s, err)
	}
	return v
}

package analyze

import (
	"strings"
	"testing"
)

func TestComputeViability_ScoreAlwaysInRange(t *testing.T) {
	allFlags := ComplianceFlags{
		BuyAmerican:           true,
		BerryAmendment:        true,
		DomesticSourcing:      true,
		AdditiveManufacturing: true,
		Packaging:             true,
		Cyber:                 true,
		Hazardous:             true,
		FDT:                   true,
	}

	cases := []struct {
		name  string
		snap  Snapshot
		price PriceIntelligence
		flags ComplianceFlags
	}{
		{"all flags, no history, bad qty", Snapshot{Quantity: NotStated}, PriceIntelligence{}, allFlags},
		{"no flags, stable history, small qty", Snapshot{Quantity: "10", AutomatedAward: "Eligible"},
			PriceIntelligence{History: []float64{45, 46, 45.5}, RecommendedBidPrice: "$44 - $47"}, ComplianceFlags{}},
		{"huge quantity", Snapshot{Quantity: "1,000,000"}, PriceIntelligence{}, allFlags},
		{"volatile single-sided history", Snapshot{Quantity: "200"},
			PriceIntelligence{History: []float64{10, 100}}, ComplianceFlags{}},
	}

	for _, tc := range cases {
		win := ComputeViability(tc.snap, tc.price, tc.flags)
		if win.Score < 0 || win.Score > 100 {
			t.Fatalf("%s: score %d out of range", tc.name, win.Score)
		}
	}
}

func TestComputeViability_QuantityBonusAndCyberPenalty(t *testing.T) {
	snap := Snapshot{Quantity: "25"}
	flags := ComplianceFlags{Cyber: true}
	win := ComputeViability(snap, PriceIntelligence{}, flags)

	// baseline 60, no history +0, qty<=50 +4, cyber -7
	if win.Score != 57 {
		t.Fatalf("expected 57, got %d", win.Score)
	}
	if !strings.Contains(win.Rationale, "Manageable quantity") {
		t.Fatalf("missing quantity clause: %s", win.Rationale)
	}
	if !strings.Contains(win.Rationale, "SPRS/NIST readiness") {
		t.Fatalf("missing cyber clause: %s", win.Rationale)
	}
}

func TestComputeViability_RationaleOrderIsDeterministic(t *testing.T) {
	snap := Snapshot{Quantity: "25", AutomatedAward: "Eligible"}
	price := PriceIntelligence{History: []float64{45, 46}}
	flags := ComplianceFlags{Cyber: true, Packaging: true}

	win := ComputeViability(snap, price, flags)
	order := []string{
		"Stable historical pricing window.",
		"Price history available for targeting.",
		"Manageable quantity supports quick delivery.",
		"Cyber clauses present",
		"packaging standards called out",
		"automated award/fast pay",
	}
	last := -1
	for _, clause := range order {
		idx := strings.Index(win.Rationale, clause)
		if idx == -1 {
			t.Fatalf("rationale missing %q: %s", clause, win.Rationale)
		}
		if idx < last {
			t.Fatalf("clause %q out of order: %s", clause, win.Rationale)
		}
		last = idx
	}
}

func TestComputeViability_UnparsableQuantityPenalty(t *testing.T) {
	win := ComputeViability(Snapshot{Quantity: NotStated}, PriceIntelligence{}, ComplianceFlags{})
	if win.Score != 54 {
		t.Fatalf("expected 54, got %d", win.Score)
	}
	if !strings.Contains(win.Rationale, "Quantity not explicit") {
		t.Fatalf("missing quantity clause: %s", win.Rationale)
	}
}

func TestComputeViability_TierThresholds(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{100, RecommendBidHighConfidence},
		{80, RecommendBidHighConfidence},
		{79, RecommendBidModerate},
		{65, RecommendBidModerate},
		{64, RecommendBidCaution},
		{50, RecommendBidCaution},
		{49, RecommendSkip},
		{0, RecommendSkip},
	}
	for _, tc := range cases {
		if got := recommendationForScore(tc.score); got != tc.want {
			t.Fatalf("score %d: expected %s, got %s", tc.score, tc.want, got)
		}
	}
}

func TestComputeViability_TargetFallsBackToLastAward(t *testing.T) {
	price := PriceIntelligence{
		History:             []float64{45, 47.5},
		RecommendedBidPrice: NotEnoughData,
	}
	win := ComputeViability(Snapshot{Quantity: "10"}, price, ComplianceFlags{})
	if win.TargetPriceRange != "$47.50 (match last known award)" {
		t.Fatalf("unexpected target range: %s", win.TargetPriceRange)
	}
}

package checklist

import (
	"testing"

	"github.com/david/rfq-pilot/internal/analyze"
	"github.com/david/rfq-pilot/internal/decision"
)

func itemIDs(items []Item) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func assertIDs(t *testing.T, items []Item, want ...string) {
	t.Helper()
	got := itemIDs(items)
	if len(got) != len(want) {
		t.Fatalf("got items %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got items %v, want %v", got, want)
		}
	}
}

func TestFromEngineRequiresHold(t *testing.T) {
	flags := map[string]bool{"cyber": true, "packaging": true}
	for _, label := range []string{decision.Bid, decision.Skip, ""} {
		if items := FromEngine(label, flags); items != nil {
			t.Errorf("decision %q produced a checklist: %v", label, itemIDs(items))
		}
	}
}

func TestFromEngineTriggerOrder(t *testing.T) {
	items := FromEngine(decision.Hold, map[string]bool{
		"hazardous": true,
		"fdt":       true,
		"packaging": true,
		"cyber":     true,
	})
	assertIDs(t, items, "sprs_score", "cmmc_l2", "packaging", "fdt", "hazmat")

	if !items[0].Blocking || !items[1].Blocking {
		t.Error("cyber items must be blocking")
	}
	if items[2].Blocking || items[3].Blocking || items[4].Blocking {
		t.Error("packaging/fdt/hazmat must not be blocking")
	}
	if items[0].Clause != "DFARS 252.204-7019 / 7020" {
		t.Errorf("sprs clause = %q", items[0].Clause)
	}
}

func TestFromEngineNoFlagsNoItems(t *testing.T) {
	if items := FromEngine(decision.Hold, map[string]bool{}); len(items) != 0 {
		t.Fatalf("expected empty checklist, got %v", itemIDs(items))
	}
}

func TestFromPayloadKeywordTriggers(t *testing.T) {
	p := decision.Payload{
		Decision: decision.Hold,
		RiskExposure: map[string]string{
			"cybersecurity":  "SPRS score required per DFARS 252.204-7019; CMMC Level 2 expected",
			"certifications": "ITAR controlled technical data",
			"packaging":      "MIL-STD-129 marking applies",
			"FOB_FDT":        "FOB Origin under FDT",
			"hazmat":         "SDS required for shipment",
		},
	}
	items := FromPayload(p)
	assertIDs(t, items, "sprs_score", "cmmc_l2", "jcp", "packaging", "fdt", "hazmat")
}

func TestFromPayloadPopulatedCyberFactTriggersSPRS(t *testing.T) {
	p := decision.Payload{
		Decision: decision.Hold,
		KeyFacts: map[string]string{"cyber": "Contractor must maintain SSP"},
	}
	assertIDs(t, FromPayload(p), "sprs_score")
}

func TestFromPayloadSentinelCyberFactDoesNotTrigger(t *testing.T) {
	p := decision.Payload{
		Decision: decision.Hold,
		KeyFacts: map[string]string{"cyber": analyze.NotStated},
	}
	if items := FromPayload(p); len(items) != 0 {
		t.Fatalf("sentinel fact triggered items: %v", itemIDs(items))
	}
}

func TestFromPayloadDeduplicatesAcrossTriggers(t *testing.T) {
	// Both the populated fact and the keyword scan fire the SPRS trigger.
	p := decision.Payload{
		Decision:     decision.Hold,
		KeyFacts:     map[string]string{"cyber": "NIST SP 800-171 flow-down"},
		RiskExposure: map[string]string{"cybersecurity": "SPRS posting required"},
	}
	assertIDs(t, FromPayload(p), "sprs_score")
}

func TestFromPayloadRequiresHold(t *testing.T) {
	p := decision.Payload{
		Decision:     decision.Bid,
		RiskExposure: map[string]string{"cybersecurity": "SPRS"},
	}
	if items := FromPayload(p); items != nil {
		t.Fatalf("non-HOLD payload produced items: %v", itemIDs(items))
	}
}

func TestNormalizeItemsVariants(t *testing.T) {
	items := NormalizeItems([]any{
		map[string]any{"question": "Do you have SPRS?", "id": "sprs_score", "blocking": true},
		map[string]any{"question": "Packaging capable?", "blocks_bid_if_no": false},
		map[string]any{"id": "orphan"},
		map[string]any{"question": "Export Control Ready", "blocks_bid_if_no": true},
	})
	assertIDs(t, items, "sprs_score", "packaging_capable?", "export_control_ready")
	if !items[0].Blocking || items[1].Blocking || !items[2].Blocking {
		t.Errorf("blocking flags wrong: %+v", items)
	}
}

func TestNormalizeItemsSkipsNonObjectEntries(t *testing.T) {
	// Decoded collaborator payloads can carry stray strings or nulls in the
	// checklist list; only objects with a question survive.
	items := NormalizeItems([]any{
		"just a string",
		nil,
		float64(7),
		map[string]any{"question": "Do you have SPRS?", "id": "sprs_score", "blocks_bid_if_no": true},
	})
	assertIDs(t, items, "sprs_score")
	if !items[0].Blocking {
		t.Errorf("blocks_bid_if_no variant not honored: %+v", items[0])
	}
}

func TestReviewChecklist(t *testing.T) {
	result := analyze.AnalysisResult{
		Snapshot: analyze.Snapshot{
			RFQNumber: "SPE4A6-24-Q-1234",
			NSN:       "1234-56-789-0123",
		},
		ComplianceFlags: analyze.ComplianceFlags{Packaging: true, Cyber: true},
		Risks: []string{
			"Packaging must follow MIL-STD-129 / ASTM D3951 / RP001.",
		},
	}

	summary, items := Review(result, "abc123")
	if summary != "Checklist for RFQ SPE4A6-24-Q-1234 (NSN 1234-56-789-0123)" {
		t.Errorf("summary = %q", summary)
	}
	assertIDs(t, items, "abc123-risk-1", "abc123-compliance-1", "abc123-compliance-2")
	if items[0].Category != "risk" || items[1].Category != "compliance" {
		t.Errorf("categories wrong: %+v", items)
	}
	if items[1].Question != "Can we meet the Packaging requirement?" {
		t.Errorf("compliance question = %q", items[1].Question)
	}
}

func TestReviewSkipsDefaultRiskSentence(t *testing.T) {
	result := analyze.AnalysisResult{
		Snapshot: analyze.Snapshot{RFQNumber: analyze.NotStated, NSN: analyze.NotStated},
		Risks:    []string{analyze.NoSpecialRisks},
	}
	summary, items := Review(result, "")
	if summary != "Checklist for solicitation review" {
		t.Errorf("summary = %q", summary)
	}
	if len(items) != 0 {
		t.Errorf("default sentence produced items: %v", itemIDs(items))
	}
}

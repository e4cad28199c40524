package supply

import (
	"reflect"
	"testing"
)

func TestNoRequirementsPasses(t *testing.T) {
	result := ValidateSupplier(map[string]any{}, Supplier{Role: "reseller"})
	if !result.Eligible || result.Status != StatusPass {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Reasons) != 0 || len(result.RiskFlags) != 0 {
		t.Errorf("unexpected reasons/flags: %+v", result)
	}
}

func TestQPLRoles(t *testing.T) {
	rfq := map[string]any{"qpl_required": true}
	cases := []struct {
		name     string
		supplier Supplier
		status   string
	}{
		{"manufacturer", Supplier{Role: "manufacturer"}, StatusPass},
		{"authorized distributor role", Supplier{Role: "Authorized Distributor"}, StatusPass},
		{"distributor with authorization", Supplier{Role: "distributor", AuthorizedDistributor: true}, StatusPass},
		{"distributor without authorization", Supplier{Role: "distributor"}, StatusFail},
		{"reseller", Supplier{Role: "reseller"}, StatusFail},
		{"unknown role", Supplier{Role: "broker"}, StatusConditional},
		{"empty role", Supplier{}, StatusConditional},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := ValidateSupplier(rfq, tc.supplier)
			if result.Status != tc.status {
				t.Errorf("status = %q, want %q (%+v)", result.Status, tc.status, result)
			}
			if result.Eligible != (tc.status == StatusPass) {
				t.Errorf("eligible = %v for status %q", result.Eligible, result.Status)
			}
		})
	}
}

func TestResellerReasons(t *testing.T) {
	result := ValidateSupplier(map[string]any{"qpl_required": true}, Supplier{Role: "reseller"})
	want := []string{
		"QPL/QML item requires manufacturer authorization",
		"Supplier role is reseller",
	}
	if !reflect.DeepEqual(result.Reasons, want) {
		t.Errorf("reasons = %#v, want %#v", result.Reasons, want)
	}
}

func TestCOQCRequiresTraceability(t *testing.T) {
	rfq := map[string]any{"coqc_required": true}

	result := ValidateSupplier(rfq, Supplier{Role: "manufacturer"})
	if result.Status != StatusFail {
		t.Fatalf("missing traceability passed: %+v", result)
	}

	result = ValidateSupplier(rfq, Supplier{Role: "manufacturer", ManufacturerTraceability: true})
	if result.Status != StatusPass {
		t.Fatalf("documented traceability failed: %+v", result)
	}
}

func TestCriticalApplicationItemFlagged(t *testing.T) {
	result := ValidateSupplier(map[string]any{"cai": true}, Supplier{Role: "manufacturer"})
	if result.Status != StatusPass {
		t.Fatalf("critical item alone must not fail: %+v", result)
	}
	if len(result.RiskFlags) != 1 || result.RiskFlags[0] != "CRITICAL_APPLICATION_ITEM" {
		t.Errorf("risk flags = %#v", result.RiskFlags)
	}
}

func TestRequirementFlagsInNestedSections(t *testing.T) {
	rfq := map[string]any{
		"key_facts": map[string]any{"qml_required": "yes"},
	}
	result := ValidateSupplier(rfq, Supplier{Role: "reseller"})
	if result.Status != StatusFail {
		t.Fatalf("nested requirement not detected: %+v", result)
	}
}

func TestFreeTextRequirementDetection(t *testing.T) {
	rfq := map[string]any{
		"compliance": map[string]any{"qpl": "QPL listing required for award"},
	}
	result := ValidateSupplier(rfq, Supplier{Role: "manufacturer"})
	if result.Status != StatusPass {
		t.Fatalf("manufacturer should pass: %+v", result)
	}

	result = ValidateSupplier(rfq, Supplier{Role: "distributor"})
	if result.Status != StatusFail {
		t.Fatalf("free-text requirement not detected: %+v", result)
	}
}

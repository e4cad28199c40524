// Package supply validates supplier eligibility against solicitation
// sourcing requirements (QPL/QML listing, COQC traceability).
package supply

import "strings"

const (
	StatusPass        = "PASS"
	StatusFail        = "FAIL"
	StatusConditional = "CONDITIONAL"
)

// Validation is the supplier eligibility verdict.
type Validation struct {
	Eligible  bool     `json:"eligible"`
	Status    string   `json:"status"`
	Reasons   []string `json:"reasons"`
	RiskFlags []string `json:"risk_flags"`
}

// Supplier describes the offering party as submitted by the caller.
type Supplier struct {
	Role                     string `json:"role"`
	AuthorizedDistributor    bool   `json:"authorized_distributor"`
	ManufacturerTraceability bool   `json:"manufacturer_traceability"`
}

var trueValues = map[string]bool{"true": true, "yes": true, "required": true, "y": true}

// nested sections of an RFQ payload that may carry requirement flags
var requirementSections = []string{"requirements", "compliance", "source_approval", "snapshot", "key_facts"}

var qplKeys = []string{
	"qpl_required",
	"qml_required",
	"qpl",
	"qml",
	"qualified_products_list",
	"qualified_manufacturers_list",
}

var coqcKeys = []string{"coqc_required", "coqc", "certificate_of_conformance"}

var criticalKeys = []string{"critical_application_item", "cai"}

// ValidateSupplier checks a supplier against an RFQ payload's sourcing
// requirements. The payload may carry flags at the top level or inside any
// known requirements section.
func ValidateSupplier(rfq map[string]any, supplier Supplier) Validation {
	var reasons, riskFlags []string
	status := StatusPass

	qplRequired := flagPresent(rfq, qplKeys)
	coqcRequired := flagPresent(rfq, coqcKeys)
	criticalItem := flagPresent(rfq, criticalKeys)

	if criticalItem {
		riskFlags = append(riskFlags, "CRITICAL_APPLICATION_ITEM")
	}

	if qplRequired {
		role := normalizeRole(supplier.Role)
		switch {
		case role == "manufacturer":
		case role == "authorized_distributor" || role == "authorized_distributor_only":
		case role == "distributor" && supplier.AuthorizedDistributor:
		case role == "reseller":
			status = StatusFail
			reasons = append(reasons,
				"QPL/QML item requires manufacturer authorization",
				"Supplier role is reseller")
		case role == "distributor":
			status = StatusFail
			reasons = append(reasons,
				"QPL/QML item requires manufacturer authorization",
				"Distributor authorization is not documented")
		default:
			status = StatusConditional
			reasons = append(reasons,
				"QPL/QML item requires manufacturer or authorized distributor",
				"Supplier authorization not documented")
		}
	}

	if coqcRequired && !supplier.ManufacturerTraceability {
		status = StatusFail
		reasons = append(reasons, "COQC required but manufacturer traceability is not documented")
	}

	return Validation{
		Eligible:  status == StatusPass,
		Status:    status,
		Reasons:   reasons,
		RiskFlags: riskFlags,
	}
}

func normalizeRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	role = strings.ReplaceAll(role, "-", "_")
	return strings.ReplaceAll(role, " ", "_")
}

func isExplicitTrue(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v == 1
	case float64:
		return v == 1
	case string:
		return trueValues[strings.ToLower(strings.TrimSpace(v))]
	}
	return false
}

func nestedValues(payload map[string]any, keys []string) []any {
	var values []any
	for _, key := range keys {
		if value, ok := payload[key]; ok {
			values = append(values, value)
		}
	}
	for _, sectionKey := range requirementSections {
		section, ok := payload[sectionKey].(map[string]any)
		if !ok {
			continue
		}
		for _, key := range keys {
			if value, ok := section[key]; ok {
				values = append(values, value)
			}
		}
	}
	return values
}

// flagPresent accepts explicit booleans or free text mentioning the
// requirement token together with "required".
func flagPresent(payload map[string]any, keys []string) bool {
	for _, value := range nestedValues(payload, keys) {
		if isExplicitTrue(value) {
			return true
		}
		text, ok := value.(string)
		if !ok {
			continue
		}
		normalized := strings.ToLower(strings.TrimSpace(text))
		if !strings.Contains(normalized, "required") {
			continue
		}
		for _, key := range keys {
			if strings.Contains(normalized, key) {
				return true
			}
		}
	}
	return false
}

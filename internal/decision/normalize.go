package decision

import (
	"fmt"
	"sort"
	"strings"
)

// Payload is the canonical shape of any analysis/decision record regardless
// of which collaborator produced it. Collaborator payloads have grown
// several historical field-name variants (decision vs final_decision vs
// bid_decision, risks as list vs keyed map); Normalize maps every known
// variant onto this one record at the boundary so core components never see
// the variants.
type Payload struct {
	Decision     string            `json:"decision"`
	Rationale    string            `json:"rationale"`
	KeyFacts     map[string]string `json:"key_facts"`
	RiskExposure map[string]string `json:"risk_exposure"`
	Risks        []string          `json:"risks"`
	Flags        map[string]bool   `json:"flags"`
}

var decisionKeys = []string{"decision", "final_decision", "bid_decision", "recommendation"}

var rationaleKeys = []string{"manager_explanation", "decision_rationale", "reason", "rationale", "explanation"}

// Normalize converts a raw collaborator payload to the canonical shape.
// Unknown keys are ignored; missing values normalize to zero values.
func Normalize(raw map[string]any) Payload {
	p := Payload{
		Decision:     strings.ToUpper(pickString(raw, decisionKeys)),
		Rationale:    pickString(raw, rationaleKeys),
		KeyFacts:     stringMap(firstMap(raw, "key_facts", "snapshot", "extracted_facts")),
		RiskExposure: stringMap(firstMap(raw, "bid_risk_and_compliance_exposure")),
		Flags:        boolMap(firstMap(raw, "compliance_flags", "flags")),
	}

	switch risks := firstOf(raw, "risks", "compliance_risks").(type) {
	case []any:
		for _, item := range risks {
			if s := stringify(item); s != "" {
				p.Risks = append(p.Risks, s)
			}
		}
	case map[string]any:
		for _, key := range sortedKeys(risks) {
			if s := stringify(risks[key]); s != "" {
				p.Risks = append(p.Risks, s)
			}
		}
	}

	return p
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func firstOf(raw map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := raw[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func firstMap(raw map[string]any, keys ...string) map[string]any {
	for _, key := range keys {
		if m, ok := raw[key].(map[string]any); ok {
			return m
		}
	}
	return nil
}

func pickString(raw map[string]any, keys []string) string {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if s := stringify(v); s != "" {
			return s
		}
	}
	return ""
}

func stringMap(m map[string]any) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for key, v := range m {
		out[key] = stringify(v)
	}
	return out
}

func boolMap(m map[string]any) map[string]bool {
	if m == nil {
		return nil
	}
	out := make(map[string]bool, len(m))
	for key, v := range m {
		switch val := v.(type) {
		case bool:
			out[key] = val
		case string:
			out[key] = strings.EqualFold(val, "true") || strings.EqualFold(val, "yes")
		}
	}
	return out
}

// stringify flattens a value to text: lists and maps join their non-empty
// items with spaces, matching how collaborators nest free-text fields.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case []any:
		var parts []string
		for _, item := range val {
			if s := stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	case map[string]any:
		var parts []string
		for _, key := range sortedKeys(val) {
			if s := stringify(val[key]); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

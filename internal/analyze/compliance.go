package analyze

import "regexp"

// Each flag has its own expression and is tested independently against the
// full text; flags never suppress one another.
var (
	buyAmericanRe = regexp.MustCompile(`(?i)Buy American|252\.225-700`)
	berryRe       = regexp.MustCompile(`(?i)Berry Amendment|252\.225-7012|252\.225-7013`)
	domesticRe    = regexp.MustCompile(`(?i)domestic content|domestic source|US-made`)
	additiveRe    = regexp.MustCompile(`(?i)Additive Manufacturing|3D printing`)
	packagingRe   = regexp.MustCompile(`(?i)MIL-STD-129|ASTM D3951|RP001`)
	cyberRe       = regexp.MustCompile(`(?i)NIST SP 800-171|SPRS|252\.204-7012|252\.204-7020`)
	hazardousRe   = regexp.MustCompile(`(?i)hazardous|MSDS|SDS`)
	fdtRe         = regexp.MustCompile(`(?i)First Destination Transportation|FDT`)
)

// ParseComplianceFlags scans text for the fixed set of regulatory concerns.
func ParseComplianceFlags(text string) ComplianceFlags {
	return ComplianceFlags{
		BuyAmerican:           buyAmericanRe.MatchString(text),
		BerryAmendment:        berryRe.MatchString(text),
		DomesticSourcing:      domesticRe.MatchString(text),
		AdditiveManufacturing: additiveRe.MatchString(text),
		Packaging:             packagingRe.MatchString(text),
		Cyber:                 cyberRe.MatchString(text),
		Hazardous:             hazardousRe.MatchString(text),
		FDT:                   fdtRe.MatchString(text),
	}
}

package decision

// Merge combines the deterministic engine's recommendation with optional
// advisory guidance. The rules apply in order:
//
//  1. a compliance blocker forces SKIP regardless of any advisory input;
//  2. the advisory may relax an engine SKIP into a HOLD (never the
//     reverse, and it can never produce a BID on its own);
//  3. otherwise the engine's recommendation stands verbatim.
func Merge(engine EngineResult, advisory *Advisory) Fused {
	if engine.ComplianceBlocker {
		return Fused{
			FinalDecision: Skip,
			Reason:        "Compliance blocker detected",
		}
	}

	if advisory != nil && engine.Recommendation == Skip && advisory.FinalDecision == Hold {
		reason := advisory.Reason
		if reason == "" {
			reason = advisory.Rationale
		}
		return Fused{
			FinalDecision: Hold,
			Reason:        reason,
			Advisory:      advisory.Fields,
		}
	}

	return Fused{
		FinalDecision: engine.Recommendation,
		Reason:        "Engine-determined outcome",
	}
}

package scorer

import "strings"

// Combine applies the §4.5 step-4 multiplicative boosts to a base combined
// score, at most one of which applies, in the stated priority order. It is
// the single place both the orchestrator's main pass and the
// history-enhanced retrieval pass compute boosted scores, so the two never
// drift apart.
func Combine(base float64, documentID, fileName, content string, documentReferences, historyKeywords []string) float64 {
	lowerFileName := strings.ToLower(fileName)
	lowerDocID := strings.ToLower(documentID)

	for _, ref := range documentReferences {
		ref = strings.ToLower(strings.TrimSpace(ref))
		if ref == "" {
			continue
		}
		if strings.Contains(lowerDocID, ref) || strings.Contains(ref, lowerDocID) || strings.Contains(lowerFileName, ref) || strings.Contains(ref, lowerFileName) {
			return base * 1.8
		}
	}

	lowerContent := strings.ToLower(content)
	for _, kw := range historyKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(lowerContent, kw) {
			return base * 1.3
		}
	}

	return base
}

// FollowUpBoost applies the §4.5 follow-up-variant same-document boost.
func FollowUpBoost(base float64, sameDocument bool) float64 {
	if sameDocument {
		return base * 2.5
	}
	return base
}

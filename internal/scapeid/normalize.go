package scapeid

import "strings"

// Normalize canonicalizes problem names and their aliases to the registry's
// snake_case form. Unknown names are returned lowercased with separators
// folded to underscores.
func Normalize(name string) string {
	normalized := strings.TrimSpace(strings.ToLower(name))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.Trim(normalized, "_")
	if normalized == "" {
		return ""
	}
	for _, candidate := range aliasCandidates(normalized) {
		if canonical, ok := canonicalProblemName(candidate); ok {
			return canonical
		}
	}
	return normalized
}

func aliasCandidates(normalized string) []string {
	candidates := []string{normalized}
	if trimmed := strings.Trim(strings.TrimPrefix(normalized, "problem"), "_"); trimmed != "" && trimmed != normalized {
		candidates = append(candidates, trimmed)
	}
	return candidates
}

func canonicalProblemName(alias string) (string, bool) {
	switch strings.ReplaceAll(alias, "_", "") {
	case "targetbits", "target", "bitmatch", "hamming":
		return "target_bits", true
	case "onemax", "ones", "countones":
		return "one_max", true
	case "sphere", "dejong", "dejong1":
		return "sphere", true
	case "knapsack", "01knapsack":
		return "knapsack", true
	case "integertarget", "inttarget", "integers":
		return "integer_target", true
	default:
		return "", false
	}
}

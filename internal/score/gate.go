package score

// MissingSections returns the expected sections that have no completed
// session yet, in expected order. An empty result means the completeness
// gate is open and insights may be produced.
//
// The gate runs before diagnostic and every numbered practice rollup: a
// partial rollup understates total possible points and would show a
// falsely high score. Drills are skill-isolated and are never gated.
func MissingSections(expected []string, completed map[string]bool) []string {
	var missing []string
	for _, section := range expected {
		if !completed[section] {
			missing = append(missing, section)
		}
	}
	return missing
}

// SectionsComplete reports whether every expected section has a
// completed session.
func SectionsComplete(expected []string, completed map[string]bool) bool {
	return len(MissingSections(expected, completed)) == 0
}

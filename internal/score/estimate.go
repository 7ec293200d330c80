package score

import (
	"math"

	"prepwise/internal/model"
)

// EstimateFromSessionTotals is the degraded-data strategy: legacy
// sessions stored a final percentage but no per-question attempts, so an
// exact rollup is impossible. The stored score is distributed across
// sections and sub-skills in proportion to each group's share of catalog
// max points, which sums back to the session score within rounding.
//
// When the session also stored per-section percentages, those are used
// for their sections and the final score only fills the gaps.
//
// Results from this path are estimates and callers must label them as
// such (model.ResultEstimated); it is kept entirely separate from the
// exact rollup so the two stay independently testable.
func EstimateFromSessionTotals(questions []*model.QuestionRecord, finalScore int, sectionScores map[string]int) *Breakdown {
	pctFor := func(section string) float64 {
		if pct, ok := sectionScores[section]; ok {
			return float64(pct)
		}
		return float64(finalScore)
	}

	sections := estimateGroups(questions, pctFor, func(q *model.QuestionRecord) string { return q.SectionName })
	subSkills := estimateGroups(questions, pctFor, func(q *model.QuestionRecord) string { return q.SubSkillName })

	b := &Breakdown{
		Sections:  statRows(sections),
		SubSkills: statRows(subSkills),
	}

	var totalEarned, totalMax float64
	for _, g := range sections {
		totalEarned += g.earned
		totalMax += g.max
		b.TotalQuestionsCorrect += g.correct
		b.TotalQuestions += g.total
		b.TotalQuestionsAttempted += g.attempted
	}
	b.OverallScore = roundPct(totalEarned, totalMax)
	b.OverallAccuracy = roundPct(totalEarned, totalMax)

	return b
}

func estimateGroups(questions []*model.QuestionRecord, pctFor func(section string) float64, key func(*model.QuestionRecord) string) []*groupTotals {
	index := make(map[string]*groupTotals)
	var ordered []*groupTotals

	for _, q := range questions {
		name := key(q)
		g, ok := index[name]
		if !ok {
			g = &groupTotals{name: name, essay: true}
			index[name] = g
			ordered = append(ordered, g)
		}
		pct := pctFor(q.SectionName) / 100
		max := float64(q.MaxPoints)
		g.earned += pct * max
		g.max += max
		g.attemptedMax += max
		g.total++
		g.attempted++
		if q.Kind != model.KindEssay {
			g.essay = false
		}
	}

	// Estimated correct counts: the group percentage applied to the
	// question count, rounded half-up.
	for _, g := range ordered {
		g.correct = int(math.Floor(g.earned/g.max*float64(g.total) + 0.5))
	}
	return ordered
}

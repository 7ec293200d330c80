package score

import (
	"math"
	"sort"

	"prepwise/internal/model"
)

// groupTotals carries unrounded sums for one grouping. Percentages are
// rounded once, at the point the stat row is built, never accumulated
// in rounded form.
type groupTotals struct {
	name           string
	earned         float64
	max            float64
	attemptedMax   float64
	correct        int
	total          int
	attempted      int
	essay          bool // every unit in the group is essay-kind
	hasProvisional bool
}

// Breakdown is the full rollup for one test: section rows, sub-skill
// rows, and overall totals.
type Breakdown struct {
	Sections  []model.GroupStat
	SubSkills []model.GroupStat

	OverallScore            int
	OverallAccuracy         int
	TotalQuestionsCorrect   int
	TotalQuestions          int
	TotalQuestionsAttempted int

	HasProvisionalUnits bool
}

// RollUp groups units by sub-skill and by section and derives the two
// percentage views per group:
//
//	score    = earned / total possible in catalog
//	accuracy = earned / possible among attempted units
//
// Essay groups force accuracy equal to score: an essay is a single
// take-it-or-leave-it unit, so an attempted-only denominator carries no
// meaning there. Overall accuracy deliberately shares the overall score
// denominator (total possible), unlike the per-group accuracy; this
// asymmetry is intended behavior and is pinned by tests.
func RollUp(units []Unit) *Breakdown {
	subSkills := groupBy(units, func(u Unit) string { return u.SubSkillName })
	sections := groupBy(units, func(u Unit) string { return u.SectionName })

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
		if g.hasProvisional {
			b.HasProvisionalUnits = true
		}
	}
	b.OverallScore = roundPct(totalEarned, totalMax)
	b.OverallAccuracy = roundPct(totalEarned, totalMax)

	return b
}

// groupBy sums units into ordered group totals, preserving first-seen
// input order so ties stay stable downstream.
func groupBy(units []Unit, key func(Unit) string) []*groupTotals {
	index := make(map[string]*groupTotals)
	var ordered []*groupTotals

	for _, u := range units {
		name := key(u)
		g, ok := index[name]
		if !ok {
			g = &groupTotals{name: name, essay: true}
			index[name] = g
			ordered = append(ordered, g)
		}
		g.earned += u.EarnedPoints
		g.max += u.MaxPoints
		g.total++
		if u.Attempted {
			g.attemptedMax += u.MaxPoints
			g.attempted++
		}
		if u.Correct && u.Attempted {
			g.correct++
		}
		if !u.Essay {
			g.essay = false
		}
		if u.Provisional {
			g.hasProvisional = true
		}
	}
	return ordered
}

func statRows(groups []*groupTotals) []model.GroupStat {
	rows := make([]model.GroupStat, 0, len(groups))
	for _, g := range groups {
		score := roundPct(g.earned, g.max)
		accuracy := roundPct(g.earned, g.attemptedMax)
		if g.essay {
			accuracy = score
		}
		rows = append(rows, model.GroupStat{
			Name:               g.name,
			Score:              score,
			Accuracy:           accuracy,
			QuestionsCorrect:   g.correct,
			QuestionsTotal:     g.total,
			QuestionsAttempted: g.attempted,
		})
	}
	return rows
}

// roundPct computes an integer percentage with round-half-up. A zero or
// negative denominator yields 0, not a division error.
func roundPct(earned, possible float64) int {
	if possible <= 0 {
		return 0
	}
	pct := 100 * earned / possible
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return int(math.Floor(pct + 0.5))
}

// RankBy selects the metric for top/bottom sub-skill views.
type RankBy string

const (
	RankByScore    RankBy = "score"
	RankByAccuracy RankBy = "accuracy"
)

// TopSubSkills returns the n strongest rows under the requested metric.
// Ties keep input order.
func TopSubSkills(stats []model.GroupStat, n int, by RankBy) []model.GroupStat {
	return rankStats(stats, n, by, true)
}

// BottomSubSkills returns the n weakest rows under the requested metric.
// Ties keep input order.
func BottomSubSkills(stats []model.GroupStat, n int, by RankBy) []model.GroupStat {
	return rankStats(stats, n, by, false)
}

func rankStats(stats []model.GroupStat, n int, by RankBy, descending bool) []model.GroupStat {
	rows := make([]model.GroupStat, len(stats))
	copy(rows, stats)

	metric := func(s model.GroupStat) int {
		if by == RankByAccuracy {
			return s.Accuracy
		}
		return s.Score
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if descending {
			return metric(rows[i]) > metric(rows[j])
		}
		return metric(rows[i]) < metric(rows[j])
	})

	if n > 0 && n < len(rows) {
		rows = rows[:n]
	}
	return rows
}

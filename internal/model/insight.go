package model

// ResultMode says how an aggregate was produced.
type ResultMode string

const (
	// ModeExact means every number came from per-question attempts.
	ResultExact ResultMode = "exact"
	// ModeEstimated means per-question detail was missing and the stored
	// session score was distributed proportionally across the catalog.
	ResultEstimated ResultMode = "estimated"
)

// InsightStatus is the availability of an aggregate. The non-available
// states are sentinels, not errors: completed-but-terrible and
// never-attempted must never collapse into the same value.
type InsightStatus string

const (
	InsightAvailable InsightStatus = "available"
	// InsightSectionsIncomplete: one or more expected sections has no
	// completed session yet, so a rollup would understate totalMax and
	// show a misleadingly high score.
	InsightSectionsIncomplete InsightStatus = "sections_incomplete"
	InsightNotStarted         InsightStatus = "not_started"
)

// GroupStat is one section or sub-skill row of a breakdown. Score is
// earned over total possible; Accuracy is earned over attempted
// possible. Both are integer percentages in [0,100].
type GroupStat struct {
	Name               string `json:"name"`
	Score              int    `json:"score"`
	Accuracy           int    `json:"accuracy"`
	QuestionsCorrect   int    `json:"questionsCorrect"`
	QuestionsTotal     int    `json:"questionsTotal"`
	QuestionsAttempted int    `json:"questionsAttempted"`
}

// AggregateResult is what the presentation layer consumes.
type AggregateResult struct {
	Status InsightStatus `json:"status"`
	Mode   ResultMode    `json:"mode,omitempty"`

	OverallScore            int `json:"overallScore"`
	OverallAccuracy         int `json:"overallAccuracy"`
	TotalQuestionsCorrect   int `json:"totalQuestionsCorrect"`
	TotalQuestions          int `json:"totalQuestions"`
	TotalQuestionsAttempted int `json:"totalQuestionsAttempted"`

	SectionBreakdown  []GroupStat `json:"sectionBreakdown,omitempty"`
	SubSkillBreakdown []GroupStat `json:"subSkillBreakdown,omitempty"`

	// MissingSections is populated when Status is sections_incomplete.
	MissingSections []string `json:"missingSections,omitempty"`

	// HasProvisionalUnits is set when any essay in the rollup is still
	// awaiting its assessment and was scored with the binary placeholder.
	HasProvisionalUnits bool `json:"hasProvisionalUnits,omitempty"`
}

package score

import (
	"log"

	"prepwise/internal/model"
)

// Unit is one reconciled question outcome, the normalized triple every
// rollup is built from. Invariant: 0 <= EarnedPoints <= MaxPoints.
type Unit struct {
	SectionName  string
	SubSkillName string
	EarnedPoints float64
	MaxPoints    float64
	Attempted    bool
	Correct      bool
	Essay        bool
	// Provisional marks an essay scored with the binary-correctness
	// placeholder because its assessment has not landed yet.
	Provisional bool
}

// Reconcile converts a raw attempt plus its catalog entry, and for essay
// questions the assessment if one exists, into a Unit.
//
// Standard questions score maxPoints or zero from the correctness flag.
// Essay assessments supersede the correctness flag entirely; until one
// arrives the binary placeholder stands in, flagged provisional.
func Reconcile(attempt *model.AttemptRecord, question *model.QuestionRecord, assessment *model.AssessmentRecord) Unit {
	unit := Unit{
		SectionName:  question.SectionName,
		SubSkillName: question.SubSkillName,
		MaxPoints:    float64(question.MaxPoints),
		Attempted:    true,
		Correct:      attempt.IsCorrect,
		Essay:        question.Kind == model.KindEssay,
	}
	if attempt.IsCorrect {
		unit.EarnedPoints = unit.MaxPoints
	}

	if unit.Essay {
		if assessment != nil {
			unit.MaxPoints = assessment.MaxPossibleScore
			unit.EarnedPoints = assessment.EarnedScore
			unit.Correct = assessment.EarnedScore >= assessment.MaxPossibleScore
		} else {
			unit.Provisional = true
		}
	}

	return unit.clamped(attempt.QuestionID)
}

// clamped enforces the unit invariant. Inconsistent source data is
// clamped and logged rather than propagated: a percentage over 100 must
// never reach a dashboard.
func (u Unit) clamped(questionID string) Unit {
	if u.MaxPoints <= 0 {
		log.Printf("reconcile: question %s has non-positive max points %.1f, dropping to 1", questionID, u.MaxPoints)
		u.MaxPoints = 1
	}
	if u.EarnedPoints < 0 {
		log.Printf("reconcile: question %s earned %.1f below zero, clamping", questionID, u.EarnedPoints)
		u.EarnedPoints = 0
	}
	if u.EarnedPoints > u.MaxPoints {
		log.Printf("reconcile: question %s earned %.1f exceeds max %.1f, clamping", questionID, u.EarnedPoints, u.MaxPoints)
		u.EarnedPoints = u.MaxPoints
	}
	return u
}

// AssessmentKey identifies the assessment for one essay response.
type AssessmentKey struct {
	SessionID  string
	QuestionID string
}

// ReconcileAll runs Reconcile over a set of attempts. Attempts whose
// question is missing from the catalog are skipped and logged; partial
// data is still useful and must not corrupt the sums.
func ReconcileAll(attempts []*model.AttemptRecord, questions map[string]*model.QuestionRecord, assessments map[AssessmentKey]*model.AssessmentRecord) []Unit {
	units := make([]Unit, 0, len(attempts))
	for _, attempt := range attempts {
		question, ok := questions[attempt.QuestionID]
		if !ok {
			log.Printf("reconcile: attempt %s references unknown question %s, skipping", attempt.ID, attempt.QuestionID)
			continue
		}
		var assessment *model.AssessmentRecord
		if question.Kind == model.KindEssay {
			assessment = assessments[AssessmentKey{SessionID: attempt.SessionID, QuestionID: attempt.QuestionID}]
		}
		units = append(units, Reconcile(attempt, question, assessment))
	}
	return units
}

// UnattemptedUnits builds zero-earned, unattempted units for catalog
// questions the user never answered, so section and overall totals use
// the full catalog as the possible-points denominator.
func UnattemptedUnits(questions []*model.QuestionRecord, attemptedIDs map[string]bool) []Unit {
	var units []Unit
	for _, q := range questions {
		if attemptedIDs[q.ID] {
			continue
		}
		units = append(units, Unit{
			SectionName:  q.SectionName,
			SubSkillName: q.SubSkillName,
			MaxPoints:    float64(q.MaxPoints),
			Essay:        q.Kind == model.KindEssay,
		})
	}
	return units
}

package score

import (
	"testing"

	"prepwise/internal/model"
)

func standardQuestion(id, section, subSkill string, maxPoints int) *model.QuestionRecord {
	return &model.QuestionRecord{
		ID:           id,
		ProductType:  "vic_selective",
		TestMode:     model.ModeDiagnostic,
		SectionName:  section,
		SubSkillName: subSkill,
		Kind:         model.KindStandard,
		MaxPoints:    maxPoints,
	}
}

func essayQuestion(id, section, subSkill string, maxPoints int) *model.QuestionRecord {
	q := standardQuestion(id, section, subSkill, maxPoints)
	q.Kind = model.KindEssay
	return q
}

func attempt(questionID string, correct bool) *model.AttemptRecord {
	return &model.AttemptRecord{
		ID:         "att-" + questionID,
		QuestionID: questionID,
		SessionID:  "sess-1",
		UserID:     "user-1",
		IsCorrect:  correct,
	}
}

func TestReconcileStandard(t *testing.T) {
	tests := []struct {
		name       string
		maxPoints  int
		correct    bool
		wantEarned float64
		wantMax    float64
	}{
		{name: "correct binary", maxPoints: 1, correct: true, wantEarned: 1, wantMax: 1},
		{name: "wrong binary", maxPoints: 1, correct: false, wantEarned: 0, wantMax: 1},
		{name: "correct weighted", maxPoints: 3, correct: true, wantEarned: 3, wantMax: 3},
		{name: "wrong weighted", maxPoints: 3, correct: false, wantEarned: 0, wantMax: 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := standardQuestion("q1", "Reading", "Inference", tc.maxPoints)
			unit := Reconcile(attempt("q1", tc.correct), q, nil)

			if unit.EarnedPoints != tc.wantEarned || unit.MaxPoints != tc.wantMax {
				t.Errorf("got earned=%.1f max=%.1f, want earned=%.1f max=%.1f",
					unit.EarnedPoints, unit.MaxPoints, tc.wantEarned, tc.wantMax)
			}
			if !unit.Attempted {
				t.Error("expected attempted=true")
			}
			if unit.Provisional {
				t.Error("standard question must never be provisional")
			}
		})
	}
}

func TestReconcileEssayWithAssessment(t *testing.T) {
	q := essayQuestion("w1", "Writing", "Persuasive Writing", 1)
	assessment := &model.AssessmentRecord{
		QuestionID:       "w1",
		SessionID:        "sess-1",
		EarnedScore:      22,
		MaxPossibleScore: 30,
	}

	// Assessment supersedes the correctness flag regardless of its value.
	unit := Reconcile(attempt("w1", false), q, assessment)

	if unit.EarnedPoints != 22 || unit.MaxPoints != 30 {
		t.Errorf("got earned=%.1f max=%.1f, want 22/30", unit.EarnedPoints, unit.MaxPoints)
	}
	if unit.Provisional {
		t.Error("graded essay must not be provisional")
	}
	if unit.Correct {
		t.Error("partial credit is not a fully correct unit")
	}
}

func TestReconcileEssayWithoutAssessment(t *testing.T) {
	// Scenario 4: ungraded essay falls back to the binary placeholder
	// and is flagged non-final.
	q := essayQuestion("w1", "Writing", "Persuasive Writing", 1)
	unit := Reconcile(attempt("w1", true), q, nil)

	if unit.EarnedPoints != 1 || unit.MaxPoints != 1 {
		t.Errorf("got earned=%.1f max=%.1f, want placeholder 1/1", unit.EarnedPoints, unit.MaxPoints)
	}
	if !unit.Provisional {
		t.Error("ungraded essay must be provisional")
	}
}

func TestReconcileClampsInconsistentAssessment(t *testing.T) {
	tests := []struct {
		name       string
		earned     float64
		max        float64
		wantEarned float64
		wantMax    float64
	}{
		{name: "earned above max", earned: 35, max: 30, wantEarned: 30, wantMax: 30},
		{name: "negative earned", earned: -2, max: 30, wantEarned: 0, wantMax: 30},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := essayQuestion("w1", "Writing", "Persuasive Writing", 1)
			unit := Reconcile(attempt("w1", false), q, &model.AssessmentRecord{
				QuestionID:       "w1",
				SessionID:        "sess-1",
				EarnedScore:      tc.earned,
				MaxPossibleScore: tc.max,
			})
			if unit.EarnedPoints != tc.wantEarned || unit.MaxPoints != tc.wantMax {
				t.Errorf("got earned=%.1f max=%.1f, want earned=%.1f max=%.1f",
					unit.EarnedPoints, unit.MaxPoints, tc.wantEarned, tc.wantMax)
			}
			if unit.EarnedPoints < 0 || unit.EarnedPoints > unit.MaxPoints {
				t.Error("unit invariant violated after clamp")
			}
		})
	}
}

func TestReconcileAllSkipsMissingCatalogEntry(t *testing.T) {
	questions := map[string]*model.QuestionRecord{
		"q1": standardQuestion("q1", "Reading", "Inference", 1),
	}
	attempts := []*model.AttemptRecord{
		attempt("q1", true),
		attempt("q-deleted", true), // no catalog entry; must be skipped, not summed
	}

	units := ReconcileAll(attempts, questions, nil)

	if len(units) != 1 {
		t.Fatalf("got %d units, want 1", len(units))
	}
	if units[0].EarnedPoints != 1 {
		t.Errorf("surviving unit earned %.1f, want 1", units[0].EarnedPoints)
	}
}

func TestUnattemptedUnits(t *testing.T) {
	questions := []*model.QuestionRecord{
		standardQuestion("q1", "Reading", "Inference", 1),
		standardQuestion("q2", "Reading", "Inference", 1),
		standardQuestion("q3", "Reading", "Vocabulary", 2),
	}
	units := UnattemptedUnits(questions, map[string]bool{"q1": true})

	if len(units) != 2 {
		t.Fatalf("got %d units, want 2", len(units))
	}
	for _, u := range units {
		if u.Attempted || u.EarnedPoints != 0 {
			t.Errorf("unattempted unit must be zero-earned and not attempted: %+v", u)
		}
	}
	if units[1].MaxPoints != 2 {
		t.Errorf("weighted question kept max %.1f, want 2", units[1].MaxPoints)
	}
}

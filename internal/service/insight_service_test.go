package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"prepwise/internal/model"
)

const testProduct = "nsw_selective"

// nswCatalog builds a small nsw_selective catalog for one mode: two
// one-point standard questions per reasoning section plus one 30-point
// essay in Writing.
func nswCatalog(mode model.TestMode) []*model.QuestionRecord {
	return []*model.QuestionRecord{
		{ID: "q-r1", ProductType: testProduct, TestMode: mode, SectionName: "Reading", SubSkillName: "Inference", Kind: model.KindStandard, MaxPoints: 1, CorrectAnswer: "A"},
		{ID: "q-r2", ProductType: testProduct, TestMode: mode, SectionName: "Reading", SubSkillName: "Inference", Kind: model.KindStandard, MaxPoints: 1, CorrectAnswer: "B"},
		{ID: "q-m1", ProductType: testProduct, TestMode: mode, SectionName: "Mathematical Reasoning", SubSkillName: "Algebra", Kind: model.KindStandard, MaxPoints: 1, CorrectAnswer: "C"},
		{ID: "q-m2", ProductType: testProduct, TestMode: mode, SectionName: "Mathematical Reasoning", SubSkillName: "Algebra", Kind: model.KindStandard, MaxPoints: 1, CorrectAnswer: "D"},
		{ID: "q-t1", ProductType: testProduct, TestMode: mode, SectionName: "Thinking Skills", SubSkillName: "Logic", Kind: model.KindStandard, MaxPoints: 1, CorrectAnswer: "A"},
		{ID: "q-t2", ProductType: testProduct, TestMode: mode, SectionName: "Thinking Skills", SubSkillName: "Logic", Kind: model.KindStandard, MaxPoints: 1, CorrectAnswer: "B"},
		{ID: "q-w1", ProductType: testProduct, TestMode: mode, SectionName: "Writing", SubSkillName: "Persuasive Writing", Kind: model.KindEssay, MaxPoints: 30},
	}
}

func completedSession(id, userID string, mode model.TestMode, section string, finalScore int, startedAt time.Time) *model.SessionRecord {
	done := startedAt.Add(30 * time.Minute)
	return &model.SessionRecord{
		ID:          id,
		UserID:      userID,
		ProductType: testProduct,
		TestMode:    mode,
		SectionName: section,
		Status:      model.SessionCompleted,
		FinalScore:  finalScore,
		StartedAt:   startedAt,
		CompletedAt: &done,
	}
}

func newInsightFixture(mode model.TestMode) (*InsightService, *fakeSessionRepo, *fakeAttemptRepo, *fakeAssessmentRepo) {
	questions := &fakeQuestionRepo{questions: nswCatalog(mode)}
	attempts := &fakeAttemptRepo{}
	assessments := &fakeAssessmentRepo{}
	sessions := newFakeSessionRepo()
	svc := NewInsightService(questions, attempts, assessments, sessions, nil, nil)
	return svc, sessions, attempts, assessments
}

func sectionStat(t *testing.T, stats []model.GroupStat, name string) model.GroupStat {
	t.Helper()
	for _, st := range stats {
		if st.Name == name {
			return st
		}
	}
	t.Fatalf("no stat for %q in %+v", name, stats)
	return model.GroupStat{}
}

func TestDiagnosticResultsExact(t *testing.T) {
	svc, sessions, attempts, assessments := newInsightFixture(model.ModeDiagnostic)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, section := range []string{"Reading", "Mathematical Reasoning", "Thinking Skills", "Writing"} {
		sess := completedSession("s-"+section, "user-1", model.ModeDiagnostic, section, 0, base.Add(time.Duration(i)*time.Hour))
		sessions.sessions[sess.ID] = sess
	}

	attempts.attempts = []*model.AttemptRecord{
		{ID: "a1", QuestionID: "q-r1", SessionID: "s-Reading", UserID: "user-1", IsCorrect: true},
		{ID: "a2", QuestionID: "q-r2", SessionID: "s-Reading", UserID: "user-1", IsCorrect: false},
		{ID: "a3", QuestionID: "q-m1", SessionID: "s-Mathematical Reasoning", UserID: "user-1", IsCorrect: true},
		// q-m2 never attempted: it must still widen the denominators.
		{ID: "a4", QuestionID: "q-t1", SessionID: "s-Thinking Skills", UserID: "user-1", IsCorrect: true},
		{ID: "a5", QuestionID: "q-t2", SessionID: "s-Thinking Skills", UserID: "user-1", IsCorrect: true},
		{ID: "a6", QuestionID: "q-w1", SessionID: "s-Writing", UserID: "user-1", IsCorrect: false},
	}
	assessments.assessments = []*model.AssessmentRecord{
		{ID: "as1", QuestionID: "q-w1", SessionID: "s-Writing", UserID: "user-1", EarnedScore: 24, MaxPossibleScore: 30},
	}

	result, err := svc.DiagnosticResults(ctx, "user-1", testProduct)
	if err != nil {
		t.Fatalf("DiagnosticResults: %v", err)
	}

	if result.Status != model.InsightAvailable {
		t.Fatalf("status = %s, want %s", result.Status, model.InsightAvailable)
	}
	if result.Mode != model.ResultExact {
		t.Errorf("mode = %s, want %s", result.Mode, model.ResultExact)
	}
	// 28 of 36 possible points.
	if result.OverallScore != 78 {
		t.Errorf("overall score = %d, want 78", result.OverallScore)
	}
	if result.OverallAccuracy != 78 {
		t.Errorf("overall accuracy = %d, want 78", result.OverallAccuracy)
	}
	if result.TotalQuestions != 7 || result.TotalQuestionsAttempted != 6 || result.TotalQuestionsCorrect != 4 {
		t.Errorf("question totals = %d/%d/%d, want 7/6/4",
			result.TotalQuestions, result.TotalQuestionsAttempted, result.TotalQuestionsCorrect)
	}

	math := sectionStat(t, result.SectionBreakdown, "Mathematical Reasoning")
	if math.Score != 50 || math.QuestionsTotal != 2 || math.QuestionsAttempted != 1 {
		t.Errorf("math section = %+v, want score 50, total 2, attempted 1", math)
	}
	if math.Accuracy != 100 {
		t.Errorf("math accuracy = %d, want 100 (attempted-only denominator)", math.Accuracy)
	}

	writing := sectionStat(t, result.SectionBreakdown, "Writing")
	if writing.Score != 80 || writing.Accuracy != 80 {
		t.Errorf("writing section = %+v, want score 80 and accuracy forced to score", writing)
	}
	if result.HasProvisionalUnits {
		t.Error("assessed essay must not mark the result provisional")
	}
}

func TestDiagnosticResultsGate(t *testing.T) {
	svc, sessions, _, _ := newInsightFixture(model.ModeDiagnostic)
	ctx := context.Background()
	base := time.Now()

	for i, section := range []string{"Reading", "Mathematical Reasoning", "Thinking Skills"} {
		sess := completedSession("s-"+section, "user-1", model.ModeDiagnostic, section, 60, base.Add(time.Duration(i)*time.Hour))
		sessions.sessions[sess.ID] = sess
	}
	// Writing was started but never finished.
	sessions.sessions["s-w"] = &model.SessionRecord{
		ID: "s-w", UserID: "user-1", ProductType: testProduct,
		TestMode: model.ModeDiagnostic, SectionName: "Writing",
		Status: model.SessionInProgress, StartedAt: base,
	}

	result, err := svc.DiagnosticResults(ctx, "user-1", testProduct)
	if err != nil {
		t.Fatalf("DiagnosticResults: %v", err)
	}
	if result.Status != model.InsightSectionsIncomplete {
		t.Fatalf("status = %s, want %s", result.Status, model.InsightSectionsIncomplete)
	}
	if len(result.MissingSections) != 1 || result.MissingSections[0] != "Writing" {
		t.Errorf("missing sections = %v, want [Writing]", result.MissingSections)
	}
}

func TestDiagnosticResultsNotStarted(t *testing.T) {
	svc, _, _, _ := newInsightFixture(model.ModeDiagnostic)

	result, err := svc.DiagnosticResults(context.Background(), "user-1", testProduct)
	if err != nil {
		t.Fatalf("DiagnosticResults: %v", err)
	}
	if result.Status != model.InsightNotStarted {
		t.Fatalf("status = %s, want %s", result.Status, model.InsightNotStarted)
	}
}

func TestDiagnosticResultsUnknownProduct(t *testing.T) {
	svc, _, _, _ := newInsightFixture(model.ModeDiagnostic)

	_, err := svc.DiagnosticResults(context.Background(), "user-1", "unknown_product")
	if !errors.Is(err, ErrUnknownProduct) {
		t.Fatalf("err = %v, want ErrUnknownProduct", err)
	}
}

func TestPracticeTestResultsEstimated(t *testing.T) {
	svc, sessions, _, _ := newInsightFixture(model.ModePractice1)
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	// Completed sessions with totals only, no per-question attempts.
	scores := map[string]int{
		"Reading":                50,
		"Mathematical Reasoning": 100,
		"Thinking Skills":        50,
		"Writing":                80,
	}
	i := 0
	for section, pct := range scores {
		sess := completedSession("s-"+section, "user-1", model.ModePractice1, section, pct, base.Add(time.Duration(i)*time.Hour))
		sessions.sessions[sess.ID] = sess
		i++
	}

	result, err := svc.PracticeTestResults(ctx, "user-1", testProduct, 1)
	if err != nil {
		t.Fatalf("PracticeTestResults: %v", err)
	}
	if result.Status != model.InsightAvailable {
		t.Fatalf("status = %s, want %s", result.Status, model.InsightAvailable)
	}
	if result.Mode != model.ResultEstimated {
		t.Fatalf("mode = %s, want %s", result.Mode, model.ResultEstimated)
	}
	// 0.5*2 + 1.0*2 + 0.5*2 + 0.8*30 = 28 of 36 points.
	if result.OverallScore != 78 {
		t.Errorf("overall score = %d, want 78", result.OverallScore)
	}
	math := sectionStat(t, result.SectionBreakdown, "Mathematical Reasoning")
	if math.Score != 100 || math.QuestionsCorrect != 2 {
		t.Errorf("math section = %+v, want score 100 with 2 estimated correct", math)
	}
}

func TestPracticeTestResultsLegacyRounds(t *testing.T) {
	svc, sessions, _, _ := newInsightFixture(model.ModePractice2)
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	// Two generic practice rounds per section. The second round backs
	// practice test 2. First round scored 10, second 90.
	for i, section := range []string{"Reading", "Mathematical Reasoning", "Thinking Skills", "Writing"} {
		first := completedSession("s1-"+section, "user-1", model.ModePracticeLegacy, section, 10, base.Add(time.Duration(i)*time.Hour))
		second := completedSession("s2-"+section, "user-1", model.ModePracticeLegacy, section, 90, base.AddDate(0, 0, 7).Add(time.Duration(i)*time.Hour))
		sessions.sessions[first.ID] = first
		sessions.sessions[second.ID] = second
	}

	result, err := svc.PracticeTestResults(ctx, "user-1", testProduct, 2)
	if err != nil {
		t.Fatalf("PracticeTestResults: %v", err)
	}
	if result.Status != model.InsightAvailable {
		t.Fatalf("status = %s, want %s", result.Status, model.InsightAvailable)
	}
	if result.Mode != model.ResultEstimated {
		t.Fatalf("mode = %s, want %s", result.Mode, model.ResultEstimated)
	}
	if result.OverallScore != 90 {
		t.Errorf("overall score = %d, want 90 (second round only)", result.OverallScore)
	}

	// Test 3 has no third round anywhere.
	result, err = svc.PracticeTestResults(ctx, "user-1", testProduct, 3)
	if err != nil {
		t.Fatalf("PracticeTestResults(3): %v", err)
	}
	if result.Status != model.InsightNotStarted {
		t.Errorf("test 3 status = %s, want %s", result.Status, model.InsightNotStarted)
	}
}

func TestPracticeTestResultsRejectsBadNumber(t *testing.T) {
	svc, _, _, _ := newInsightFixture(model.ModePractice1)

	for _, n := range []int{0, 6, -1} {
		if _, err := svc.PracticeTestResults(context.Background(), "user-1", testProduct, n); err == nil {
			t.Errorf("test number %d accepted, want error", n)
		}
	}
}

func TestDrillResults(t *testing.T) {
	drillCatalog := []*model.QuestionRecord{
		{ID: "d1", ProductType: testProduct, TestMode: model.ModeDrill, SectionName: "Mathematical Reasoning", SubSkillName: "Algebra", Kind: model.KindStandard, MaxPoints: 1, CorrectAnswer: "A"},
		{ID: "d2", ProductType: testProduct, TestMode: model.ModeDrill, SectionName: "Mathematical Reasoning", SubSkillName: "Fractions", Kind: model.KindStandard, MaxPoints: 1, CorrectAnswer: "B"},
		{ID: "d3", ProductType: testProduct, TestMode: model.ModeDrill, SectionName: "Mathematical Reasoning", SubSkillName: "Fractions", Kind: model.KindStandard, MaxPoints: 1, CorrectAnswer: "C"},
	}
	questions := &fakeQuestionRepo{questions: drillCatalog}
	attempts := &fakeAttemptRepo{attempts: []*model.AttemptRecord{
		{ID: "a1", QuestionID: "d1", SessionID: "s-drill", UserID: "user-1", IsCorrect: true},
		{ID: "a2", QuestionID: "d2", SessionID: "s-drill", UserID: "user-1", IsCorrect: false},
	}}
	sessions := newFakeSessionRepo()
	// Drills report on whatever was attempted; the session need not be
	// completed and d3 must not pad the denominator.
	sessions.sessions["s-drill"] = &model.SessionRecord{
		ID: "s-drill", UserID: "user-1", ProductType: testProduct,
		TestMode: model.ModeDrill, SectionName: "Mathematical Reasoning",
		Status: model.SessionInProgress, StartedAt: time.Now(),
	}
	svc := NewInsightService(questions, attempts, &fakeAssessmentRepo{}, sessions, nil, nil)

	result, err := svc.DrillResults(context.Background(), "user-1", testProduct)
	if err != nil {
		t.Fatalf("DrillResults: %v", err)
	}
	if result.Status != model.InsightAvailable {
		t.Fatalf("status = %s, want %s", result.Status, model.InsightAvailable)
	}
	if result.OverallScore != 50 || result.TotalQuestions != 2 {
		t.Errorf("overall = %d over %d questions, want 50 over 2", result.OverallScore, result.TotalQuestions)
	}
	algebra := sectionStat(t, result.SubSkillBreakdown, "Algebra")
	fractions := sectionStat(t, result.SubSkillBreakdown, "Fractions")
	if algebra.Score != 100 || fractions.Score != 0 {
		t.Errorf("sub-skill scores = %d/%d, want 100/0", algebra.Score, fractions.Score)
	}
}

func TestDiagnosticResultsProvisionalEssay(t *testing.T) {
	svc, sessions, attempts, _ := newInsightFixture(model.ModeDiagnostic)
	ctx := context.Background()
	base := time.Now()

	for i, section := range []string{"Reading", "Mathematical Reasoning", "Thinking Skills", "Writing"} {
		sess := completedSession("s-"+section, "user-1", model.ModeDiagnostic, section, 0, base.Add(time.Duration(i)*time.Hour))
		sessions.sessions[sess.ID] = sess
	}
	// Essay answered but its assessment has not landed.
	attempts.attempts = []*model.AttemptRecord{
		{ID: "a1", QuestionID: "q-w1", SessionID: "s-Writing", UserID: "user-1", IsCorrect: false},
	}

	result, err := svc.DiagnosticResults(ctx, "user-1", testProduct)
	if err != nil {
		t.Fatalf("DiagnosticResults: %v", err)
	}
	if !result.HasProvisionalUnits {
		t.Error("ungraded essay must mark the result provisional")
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"prepwise/internal/cache"
	"prepwise/internal/model"
	"prepwise/internal/repository"
	"prepwise/internal/score"
)

var ErrUnknownProduct = errors.New("unknown product type")

// InsightService computes the score/accuracy aggregates the dashboards
// consume. Every call is a pure function of the stored attempts,
// catalog, and assessments; the caches are memoization only.
type InsightService struct {
	questionRepo   repository.QuestionRepo
	attemptRepo    repository.AttemptRepo
	assessmentRepo repository.AssessmentRepo
	sessionRepo    repository.SessionRepo
	catalogCache   cache.CatalogCache
	insightCache   cache.InsightCache
}

// NewInsightService creates a new insight service
func NewInsightService(
	questionRepo repository.QuestionRepo,
	attemptRepo repository.AttemptRepo,
	assessmentRepo repository.AssessmentRepo,
	sessionRepo repository.SessionRepo,
	catalogCache cache.CatalogCache,
	insightCache cache.InsightCache,
) *InsightService {
	return &InsightService{
		questionRepo:   questionRepo,
		attemptRepo:    attemptRepo,
		assessmentRepo: assessmentRepo,
		sessionRepo:    sessionRepo,
		catalogCache:   catalogCache,
		insightCache:   insightCache,
	}
}

// DiagnosticResults returns the diagnostic aggregate, gated on every
// expected section having a completed session.
func (s *InsightService) DiagnosticResults(ctx context.Context, userID, productType string) (*model.AggregateResult, error) {
	structure, ok := model.StructureFor(productType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, productType)
	}

	if cached := s.cached(ctx, userID, productType, "diagnostic"); cached != nil {
		return cached, nil
	}

	sessions, err := s.sessionRepo.GetByUserProductMode(ctx, userID, productType, model.ModeDiagnostic)
	if err != nil {
		return nil, fmt.Errorf("load diagnostic sessions: %w", err)
	}
	if len(sessions) == 0 {
		return &model.AggregateResult{Status: model.InsightNotStarted}, nil
	}

	completed := completedSections(sessions)
	if missing := score.MissingSections(structure.Sections, completed); len(missing) > 0 {
		return &model.AggregateResult{
			Status:          model.InsightSectionsIncomplete,
			MissingSections: missing,
		}, nil
	}

	sessionIDs := completedSessionIDs(sessions)
	attempts, err := s.attemptRepo.GetBySessions(ctx, sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("load attempts: %w", err)
	}
	result, err := s.exactAggregate(ctx, productType, model.ModeDiagnostic, sessionIDs, attempts)
	if err != nil {
		return nil, err
	}

	s.store(ctx, userID, productType, "diagnostic", result)
	return result, nil
}

// PracticeTestResults returns the aggregate for one numbered practice
// test. Explicitly numbered sessions win; legacy generic sessions are
// assigned to rounds deterministically. When a completed legacy session
// stored only its totals the estimator stands in for the exact rollup,
// and the result says so via Mode.
func (s *InsightService) PracticeTestResults(ctx context.Context, userID, productType string, testNumber int) (*model.AggregateResult, error) {
	structure, ok := model.StructureFor(productType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, productType)
	}
	mode, err := model.PracticeMode(testNumber)
	if err != nil {
		return nil, err
	}

	view := string(mode)
	if cached := s.cached(ctx, userID, productType, view); cached != nil {
		return cached, nil
	}

	sessions, err := s.resolvePracticeSessions(ctx, userID, productType, mode, testNumber)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return &model.AggregateResult{Status: model.InsightNotStarted}, nil
	}

	completed := completedSections(sessions)
	if missing := score.MissingSections(structure.Sections, completed); len(missing) > 0 {
		return &model.AggregateResult{
			Status:          model.InsightSectionsIncomplete,
			MissingSections: missing,
		}, nil
	}

	sessionIDs := completedSessionIDs(sessions)
	attempts, err := s.attemptRepo.GetBySessions(ctx, sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("load attempts: %w", err)
	}

	var result *model.AggregateResult
	if len(attempts) > 0 {
		result, err = s.exactAggregate(ctx, productType, mode, sessionIDs, attempts)
		if err != nil {
			return nil, err
		}
	} else {
		// Degraded path: session totals exist but question-level detail
		// was never stored.
		result, err = s.estimatedAggregate(ctx, productType, mode, sessions)
		if err != nil {
			return nil, err
		}
	}

	s.store(ctx, userID, productType, view, result)
	return result, nil
}

// DrillResults aggregates drill sessions. Drills are skill-isolated by
// design, so there is no section completeness gate and no padding of
// the denominator with unattempted catalog questions.
func (s *InsightService) DrillResults(ctx context.Context, userID, productType string) (*model.AggregateResult, error) {
	if _, ok := model.StructureFor(productType); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, productType)
	}

	if cached := s.cached(ctx, userID, productType, "drills"); cached != nil {
		return cached, nil
	}

	sessions, err := s.sessionRepo.GetByUserProductMode(ctx, userID, productType, model.ModeDrill)
	if err != nil {
		return nil, fmt.Errorf("load drill sessions: %w", err)
	}
	sessionIDs := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		sessionIDs = append(sessionIDs, sess.ID)
	}

	attempts, err := s.attemptRepo.GetBySessions(ctx, sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("load attempts: %w", err)
	}
	if len(attempts) == 0 {
		return &model.AggregateResult{Status: model.InsightNotStarted}, nil
	}

	units, err := s.reconcileAttempts(ctx, productType, model.ModeDrill, sessionIDs, attempts, false)
	if err != nil {
		return nil, err
	}

	result := toAggregate(score.RollUp(units), model.ResultExact)
	s.store(ctx, userID, productType, "drills", result)
	return result, nil
}

// exactAggregate is the normal path: reconcile every attempt against
// the catalog and roll up, padding the denominators with unattempted
// catalog questions so score reflects the whole test.
func (s *InsightService) exactAggregate(ctx context.Context, productType string, mode model.TestMode, sessionIDs []string, attempts []*model.AttemptRecord) (*model.AggregateResult, error) {
	units, err := s.reconcileAttempts(ctx, productType, mode, sessionIDs, attempts, true)
	if err != nil {
		return nil, err
	}
	return toAggregate(score.RollUp(units), model.ResultExact), nil
}

func (s *InsightService) reconcileAttempts(ctx context.Context, productType string, mode model.TestMode, sessionIDs []string, attempts []*model.AttemptRecord, padCatalog bool) ([]score.Unit, error) {
	catalog, err := s.loadCatalog(ctx, productType, mode)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.QuestionRecord, len(catalog))
	for _, q := range catalog {
		byID[q.ID] = q
	}

	assessments, err := s.assessmentRepo.GetBySessions(ctx, sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("load assessments: %w", err)
	}
	byKey := make(map[score.AssessmentKey]*model.AssessmentRecord, len(assessments))
	for _, a := range assessments {
		byKey[score.AssessmentKey{SessionID: a.SessionID, QuestionID: a.QuestionID}] = a
	}

	units := score.ReconcileAll(attempts, byID, byKey)

	if padCatalog {
		attemptedIDs := make(map[string]bool, len(attempts))
		for _, att := range attempts {
			attemptedIDs[att.QuestionID] = true
		}
		units = append(units, score.UnattemptedUnits(catalog, attemptedIDs)...)
	}
	return units, nil
}

func (s *InsightService) estimatedAggregate(ctx context.Context, productType string, mode model.TestMode, sessions []*model.SessionRecord) (*model.AggregateResult, error) {
	catalog, err := s.loadCatalog(ctx, productType, mode)
	if err != nil {
		return nil, err
	}

	sectionScores := make(map[string]int)
	total := 0
	counted := 0
	for _, sess := range sessions {
		if sess.Status != model.SessionCompleted {
			continue
		}
		sectionScores[sess.SectionName] = sess.FinalScore
		for name, pct := range sess.SectionScores {
			sectionScores[name] = pct
		}
		total += sess.FinalScore
		counted++
	}
	finalScore := 0
	if counted > 0 {
		finalScore = total / counted
	}

	return toAggregate(score.EstimateFromSessionTotals(catalog, finalScore, sectionScores), model.ResultEstimated), nil
}

// resolvePracticeSessions maps a requested test number to its sessions.
// Numbered sessions always win. Legacy sessions tagged with the generic
// practice mode are assigned per section in startedAt order: a section's
// k-th legacy session belongs to round k, and round k backs test k
// whenever no numbered session claims it.
func (s *InsightService) resolvePracticeSessions(ctx context.Context, userID, productType string, mode model.TestMode, testNumber int) ([]*model.SessionRecord, error) {
	numbered, err := s.sessionRepo.GetByUserProductMode(ctx, userID, productType, mode)
	if err != nil {
		return nil, fmt.Errorf("load practice sessions: %w", err)
	}
	if len(numbered) > 0 {
		return numbered, nil
	}

	legacy, err := s.sessionRepo.GetByUserProductMode(ctx, userID, productType, model.ModePracticeLegacy)
	if err != nil {
		return nil, fmt.Errorf("load legacy practice sessions: %w", err)
	}
	if len(legacy) == 0 {
		return nil, nil
	}

	bySection := make(map[string][]*model.SessionRecord)
	for _, sess := range legacy {
		bySection[sess.SectionName] = append(bySection[sess.SectionName], sess)
	}

	var round []*model.SessionRecord
	for _, sessions := range bySection {
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].StartedAt.Before(sessions[j].StartedAt)
		})
		if testNumber <= len(sessions) {
			round = append(round, sessions[testNumber-1])
		}
	}
	return round, nil
}

func (s *InsightService) loadCatalog(ctx context.Context, productType string, mode model.TestMode) ([]*model.QuestionRecord, error) {
	if s.catalogCache != nil {
		cached, err := s.catalogCache.GetQuestions(ctx, productType, mode)
		if err != nil {
			log.Printf("catalog cache read failed for %s/%s: %v", productType, mode, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	questions, err := s.questionRepo.GetByProductAndMode(ctx, productType, mode)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	if s.catalogCache != nil {
		if err := s.catalogCache.SetQuestions(ctx, productType, mode, questions); err != nil {
			log.Printf("catalog cache write failed for %s/%s: %v", productType, mode, err)
		}
	}
	return questions, nil
}

func (s *InsightService) cached(ctx context.Context, userID, productType, view string) *model.AggregateResult {
	if s.insightCache == nil {
		return nil
	}
	result, err := s.insightCache.Get(ctx, userID, productType, view)
	if err != nil {
		log.Printf("insight cache read failed for %s/%s/%s: %v", userID, productType, view, err)
		return nil
	}
	return result
}

func (s *InsightService) store(ctx context.Context, userID, productType, view string, result *model.AggregateResult) {
	if s.insightCache == nil {
		return
	}
	if err := s.insightCache.Set(ctx, userID, productType, view, result); err != nil {
		log.Printf("insight cache write failed for %s/%s/%s: %v", userID, productType, view, err)
	}
}

func toAggregate(b *score.Breakdown, mode model.ResultMode) *model.AggregateResult {
	return &model.AggregateResult{
		Status:                  model.InsightAvailable,
		Mode:                    mode,
		OverallScore:            b.OverallScore,
		OverallAccuracy:         b.OverallAccuracy,
		TotalQuestionsCorrect:   b.TotalQuestionsCorrect,
		TotalQuestions:          b.TotalQuestions,
		TotalQuestionsAttempted: b.TotalQuestionsAttempted,
		SectionBreakdown:        b.Sections,
		SubSkillBreakdown:       b.SubSkills,
		HasProvisionalUnits:     b.HasProvisionalUnits,
	}
}

func completedSections(sessions []*model.SessionRecord) map[string]bool {
	completed := make(map[string]bool)
	for _, sess := range sessions {
		if sess.Status == model.SessionCompleted {
			completed[sess.SectionName] = true
		}
	}
	return completed
}

func completedSessionIDs(sessions []*model.SessionRecord) []string {
	var ids []string
	for _, sess := range sessions {
		if sess.Status == model.SessionCompleted {
			ids = append(ids, sess.ID)
		}
	}
	return ids
}

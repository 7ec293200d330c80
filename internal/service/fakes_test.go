package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"prepwise/internal/model"
	"prepwise/internal/repository"
)

// In-memory stand-ins for the Mongo repositories. They mirror the real
// implementations' contracts, including the session status guard.

type fakeQuestionRepo struct {
	questions []*model.QuestionRecord
}

func (r *fakeQuestionRepo) Create(_ context.Context, q *model.QuestionRecord) error {
	r.questions = append(r.questions, q)
	return nil
}

func (r *fakeQuestionRepo) Upsert(_ context.Context, q *model.QuestionRecord) error {
	for i, existing := range r.questions {
		if existing.ID == q.ID {
			r.questions[i] = q
			return nil
		}
	}
	r.questions = append(r.questions, q)
	return nil
}

func (r *fakeQuestionRepo) GetByID(_ context.Context, id string) (*model.QuestionRecord, error) {
	for _, q := range r.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, nil
}

func (r *fakeQuestionRepo) GetByIDs(_ context.Context, ids []string) ([]*model.QuestionRecord, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []*model.QuestionRecord
	for _, q := range r.questions {
		if want[q.ID] {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *fakeQuestionRepo) GetByProductAndMode(_ context.Context, productType string, testMode model.TestMode) ([]*model.QuestionRecord, error) {
	var out []*model.QuestionRecord
	for _, q := range r.questions {
		if q.ProductType == productType && q.TestMode == testMode {
			out = append(out, q)
		}
	}
	return out, nil
}

type fakeAttemptRepo struct {
	attempts []*model.AttemptRecord
}

func (r *fakeAttemptRepo) Create(_ context.Context, a *model.AttemptRecord) error {
	r.attempts = append(r.attempts, a)
	return nil
}

func (r *fakeAttemptRepo) GetBySession(_ context.Context, sessionID string) ([]*model.AttemptRecord, error) {
	return r.GetBySessions(context.Background(), []string{sessionID})
}

func (r *fakeAttemptRepo) GetBySessions(_ context.Context, sessionIDs []string) ([]*model.AttemptRecord, error) {
	want := make(map[string]bool, len(sessionIDs))
	for _, id := range sessionIDs {
		want[id] = true
	}
	var out []*model.AttemptRecord
	for _, a := range r.attempts {
		if want[a.SessionID] {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeAssessmentRepo struct {
	assessments []*model.AssessmentRecord
}

func (r *fakeAssessmentRepo) Create(_ context.Context, a *model.AssessmentRecord) error {
	r.assessments = append(r.assessments, a)
	return nil
}

func (r *fakeAssessmentRepo) GetBySessions(_ context.Context, sessionIDs []string) ([]*model.AssessmentRecord, error) {
	want := make(map[string]bool, len(sessionIDs))
	for _, id := range sessionIDs {
		want[id] = true
	}
	var out []*model.AssessmentRecord
	for _, a := range r.assessments {
		if want[a.SessionID] {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeSessionRepo struct {
	sessions map[string]*model.SessionRecord
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*model.SessionRecord{}}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *model.SessionRecord) error {
	if s.Status == "" {
		s.Status = model.SessionNotStarted
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	r.sessions[s.ID] = s
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id string) (*model.SessionRecord, error) {
	return r.sessions[id], nil
}

func (r *fakeSessionRepo) GetCurrent(_ context.Context, userID, productType string, testMode model.TestMode, sectionName string) (*model.SessionRecord, error) {
	var newest *model.SessionRecord
	for _, s := range r.sessions {
		if s.UserID != userID || s.ProductType != productType || s.TestMode != testMode || s.SectionName != sectionName {
			continue
		}
		if s.Status == model.SessionCompleted {
			continue
		}
		if newest == nil || s.StartedAt.After(newest.StartedAt) {
			newest = s
		}
	}
	return newest, nil
}

func (r *fakeSessionRepo) GetByUserAndProduct(_ context.Context, userID, productType string) ([]*model.SessionRecord, error) {
	var out []*model.SessionRecord
	for _, s := range r.sessions {
		if s.UserID == userID && s.ProductType == productType {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) GetByUserProductMode(_ context.Context, userID, productType string, testMode model.TestMode) ([]*model.SessionRecord, error) {
	var out []*model.SessionRecord
	for _, s := range r.sessions {
		if s.UserID == userID && s.ProductType == productType && s.TestMode == testMode {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) GetCompletedSince(_ context.Context, since time.Time) ([]*model.SessionRecord, error) {
	var out []*model.SessionRecord
	for _, s := range r.sessions {
		if s.Status == model.SessionCompleted && s.CompletedAt != nil && !s.CompletedAt.Before(since) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) UpdateProgress(_ context.Context, id string, progress *model.SessionProgress) error {
	s, ok := r.sessions[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if s.Status == model.SessionCompleted {
		return repository.ErrSessionCompleted
	}
	s.Status = model.SessionInProgress
	s.CurrentQuestionIndex = progress.CurrentQuestionIndex
	s.Answers = progress.Answers
	s.FlaggedQuestions = progress.FlaggedQuestions
	s.TimeRemainingSeconds = progress.TimeRemainingSeconds
	return nil
}

func (r *fakeSessionRepo) Complete(_ context.Context, id string, completion *model.SessionCompletion) error {
	s, ok := r.sessions[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if s.Status == model.SessionCompleted {
		return repository.ErrSessionCompleted
	}
	if s.Status != model.SessionInProgress {
		return repository.ErrInvalidTransition
	}
	now := time.Now()
	s.Status = model.SessionCompleted
	s.FinalScore = completion.FinalScore
	s.SectionScores = completion.SectionScores
	s.CorrectAnswers = completion.CorrectAnswers
	s.TotalTimeSeconds = completion.TotalTimeSeconds
	s.CompletedAt = &now
	return nil
}

type fakePublisher struct {
	published map[string][][]byte
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{published: map[string][][]byte{}}
}

func (p *fakePublisher) Publish(_ context.Context, queueName string, body []byte) error {
	p.published[queueName] = append(p.published[queueName], body)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"prepwise/internal/cache"
	"prepwise/internal/event"
	"prepwise/internal/model"
	"prepwise/internal/repository"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrNotSessionOwner  = errors.New("session belongs to another user")
	ErrQuestionNotFound = errors.New("question not found in catalog")
)

// Broadcaster pushes events to a user's open tabs.
type Broadcaster interface {
	SendToUser(userID string, messageType string, payload interface{})
}

// SessionService owns the section session lifecycle: fetch-or-create,
// auto-save, completion, and individual response recording.
type SessionService struct {
	sessionRepo  repository.SessionRepo
	questionRepo repository.QuestionRepo
	attemptRepo  repository.AttemptRepo
	catalogCache cache.CatalogCache
	insightCache cache.InsightCache
	publisher    event.Publisher
	broadcaster  Broadcaster
}

// NewSessionService creates a new session service
func NewSessionService(
	sessionRepo repository.SessionRepo,
	questionRepo repository.QuestionRepo,
	attemptRepo repository.AttemptRepo,
	catalogCache cache.CatalogCache,
	insightCache cache.InsightCache,
	publisher event.Publisher,
) *SessionService {
	return &SessionService{
		sessionRepo:  sessionRepo,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		catalogCache: catalogCache,
		insightCache: insightCache,
		publisher:    publisher,
	}
}

// SetBroadcaster injects the push channel (the ws hub implements it).
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// CurrentSession returns the user's resumable session for a section,
// creating one on first access. Completed sessions are never resumed;
// a retake always gets a fresh session and the old one stays on record.
func (s *SessionService) CurrentSession(ctx context.Context, userID, productType string, testMode model.TestMode, sectionName string) (*model.SessionRecord, error) {
	existing, err := s.sessionRepo.GetCurrent(ctx, userID, productType, testMode, sectionName)
	if err != nil {
		return nil, fmt.Errorf("load current session: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	total, err := s.sectionQuestionCount(ctx, productType, testMode, sectionName)
	if err != nil {
		return nil, err
	}

	session := &model.SessionRecord{
		ID:             uuid.New().String(),
		UserID:         userID,
		ProductType:    productType,
		TestMode:       testMode,
		SectionName:    sectionName,
		Status:         model.SessionNotStarted,
		TotalQuestions: total,
		Answers:        map[string]string{},
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SaveProgress is the auto-save write path. Rapid successive saves are
// last-write-wins; a save against a completed session is rejected by
// the repository's status guard.
func (s *SessionService) SaveProgress(ctx context.Context, userID, sessionID string, progress *model.SessionProgress) error {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return err
	}

	if err := s.sessionRepo.UpdateProgress(ctx, sessionID, progress); err != nil {
		return err
	}

	s.push(userID, "session_progress", map[string]interface{}{
		"sessionId":            sessionID,
		"sectionName":          session.SectionName,
		"currentQuestionIndex": progress.CurrentQuestionIndex,
	})
	return nil
}

// CompleteSession finalizes a session with its totals, announces the
// completion, and drops the user's cached insights so the next read
// recomputes from the new data.
func (s *SessionService) CompleteSession(ctx context.Context, userID, sessionID string, completion *model.SessionCompletion) error {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return err
	}

	if err := s.sessionRepo.Complete(ctx, sessionID, completion); err != nil {
		return err
	}

	s.invalidateInsights(ctx, userID, session.ProductType)

	event.PublishSessionCompleted(ctx, s.publisher, &event.SessionCompletedEvent{
		UserID:      userID,
		SessionID:   sessionID,
		ProductType: session.ProductType,
		TestMode:    session.TestMode,
		SectionName: session.SectionName,
		FinalScore:  completion.FinalScore,
	})

	s.push(userID, "session_completed", map[string]interface{}{
		"sessionId":   sessionID,
		"sectionName": session.SectionName,
		"finalScore":  completion.FinalScore,
	})
	// The next insight read recomputes from the new session, so open
	// dashboards can refresh immediately.
	s.push(userID, "insights_ready", map[string]interface{}{
		"productType": session.ProductType,
		"testMode":    session.TestMode,
	})
	return nil
}

// RecordResponse appends one answer record, grading it against the
// catalog at write time. Essay responses additionally request an
// asynchronous assessment; until it lands the correctness flag is the
// documented best-effort placeholder.
func (s *SessionService) RecordResponse(ctx context.Context, userID, sessionID, questionID, answer string, timeSpentSeconds int) (*model.AttemptRecord, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	question, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("load question: %w", err)
	}
	if question == nil {
		return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, questionID)
	}

	attempt := &model.AttemptRecord{
		QuestionID:       questionID,
		SessionID:        sessionID,
		UserID:           userID,
		UserAnswer:       answer,
		IsCorrect:        gradeAnswer(question, answer),
		TimeSpentSeconds: timeSpentSeconds,
	}
	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		return nil, err
	}

	if question.Kind == model.KindEssay {
		event.PublishGradingRequest(ctx, s.publisher, &event.GradingRequestEvent{
			UserID:     userID,
			SessionID:  sessionID,
			QuestionID: questionID,
			Answer:     answer,
			MaxPoints:  question.MaxPoints,
		})
	}

	s.invalidateInsights(ctx, userID, session.ProductType)
	return attempt, nil
}

// gradeAnswer computes the correctness flag at write time. Essays are
// never auto-correct here; their real score arrives with the
// assessment.
func gradeAnswer(question *model.QuestionRecord, answer string) bool {
	if question.Kind == model.KindEssay {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(question.CorrectAnswer))
}

func (s *SessionService) ownedSession(ctx context.Context, userID, sessionID string) (*model.SessionRecord, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.UserID != userID {
		return nil, ErrNotSessionOwner
	}
	return session, nil
}

func (s *SessionService) sectionQuestionCount(ctx context.Context, productType string, testMode model.TestMode, sectionName string) (int, error) {
	var questions []*model.QuestionRecord
	var err error

	if s.catalogCache != nil {
		questions, err = s.catalogCache.GetQuestions(ctx, productType, testMode)
		if err != nil {
			log.Printf("catalog cache read failed for %s/%s: %v", productType, testMode, err)
			questions = nil
		}
	}
	if questions == nil {
		questions, err = s.questionRepo.GetByProductAndMode(ctx, productType, testMode)
		if err != nil {
			return 0, fmt.Errorf("load catalog: %w", err)
		}
	}

	count := 0
	for _, q := range questions {
		if q.SectionName == sectionName {
			count++
		}
	}
	return count, nil
}

func (s *SessionService) invalidateInsights(ctx context.Context, userID, productType string) {
	if s.insightCache == nil {
		return
	}
	if err := s.insightCache.Invalidate(ctx, userID, productType); err != nil {
		log.Printf("insight cache invalidation failed for %s/%s: %v", userID, productType, err)
	}
}

func (s *SessionService) push(userID, messageType string, payload interface{}) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.SendToUser(userID, messageType, payload)
}

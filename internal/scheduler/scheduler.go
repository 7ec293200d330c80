package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"prepwise/internal/event"
	"prepwise/internal/model"
	"prepwise/internal/repository"
	"prepwise/internal/score"
)

const (
	sweepInterval = 30 * time.Minute
	// sweepWindow bounds how far back the grading sweep looks. Essays
	// older than this either have an assessment or need manual review.
	sweepWindow = 72 * time.Hour
)

// Scheduler runs periodic maintenance: re-requesting grading for essay
// responses whose assessment never arrived.
type Scheduler struct {
	scheduler *gocron.Scheduler

	sessionRepo    repository.SessionRepo
	attemptRepo    repository.AttemptRepo
	assessmentRepo repository.AssessmentRepo
	questionRepo   repository.QuestionRepo
	publisher      event.Publisher
}

// New creates a new scheduler instance
func New(
	sessionRepo repository.SessionRepo,
	attemptRepo repository.AttemptRepo,
	assessmentRepo repository.AssessmentRepo,
	questionRepo repository.QuestionRepo,
	publisher event.Publisher,
) *Scheduler {
	return &Scheduler{
		scheduler:      gocron.NewScheduler(time.UTC),
		sessionRepo:    sessionRepo,
		attemptRepo:    attemptRepo,
		assessmentRepo: assessmentRepo,
		questionRepo:   questionRepo,
		publisher:      publisher,
	}
}

// Start begins running all scheduled tasks in the background.
func (s *Scheduler) Start() {
	s.scheduler.Every(sweepInterval).Do(s.sweepUngradedEssays)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// sweepUngradedEssays finds recently completed sessions holding essay
// responses without an assessment and re-publishes grading requests for
// them. The grading queue is at-least-once, so duplicates are fine.
func (s *Scheduler) sweepUngradedEssays() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	sessions, err := s.sessionRepo.GetCompletedSince(ctx, time.Now().Add(-sweepWindow))
	if err != nil {
		log.Printf("grading sweep: failed to list sessions: %v", err)
		return
	}

	requested := 0
	for _, session := range sessions {
		requested += s.sweepSession(ctx, session)
	}
	if requested > 0 {
		log.Printf("grading sweep: re-requested %d assessments across %d sessions", requested, len(sessions))
	}
}

func (s *Scheduler) sweepSession(ctx context.Context, session *model.SessionRecord) int {
	attempts, err := s.attemptRepo.GetBySession(ctx, session.ID)
	if err != nil {
		log.Printf("grading sweep: failed to load attempts for session %s: %v", session.ID, err)
		return 0
	}
	if len(attempts) == 0 {
		return 0
	}

	assessments, err := s.assessmentRepo.GetBySessions(ctx, []string{session.ID})
	if err != nil {
		log.Printf("grading sweep: failed to load assessments for session %s: %v", session.ID, err)
		return 0
	}
	graded := make(map[score.AssessmentKey]bool, len(assessments))
	for _, a := range assessments {
		graded[score.AssessmentKey{SessionID: a.SessionID, QuestionID: a.QuestionID}] = true
	}

	ids := make([]string, 0, len(attempts))
	for _, att := range attempts {
		ids = append(ids, att.QuestionID)
	}
	questions, err := s.questionRepo.GetByIDs(ctx, ids)
	if err != nil {
		log.Printf("grading sweep: failed to load questions for session %s: %v", session.ID, err)
		return 0
	}
	byID := make(map[string]*model.QuestionRecord, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	requested := 0
	for _, att := range attempts {
		q, ok := byID[att.QuestionID]
		if !ok || q.Kind != model.KindEssay {
			continue
		}
		if graded[score.AssessmentKey{SessionID: att.SessionID, QuestionID: att.QuestionID}] {
			continue
		}
		event.PublishGradingRequest(ctx, s.publisher, &event.GradingRequestEvent{
			UserID:     att.UserID,
			SessionID:  att.SessionID,
			QuestionID: att.QuestionID,
			Answer:     att.UserAnswer,
			MaxPoints:  q.MaxPoints,
		})
		requested++
	}
	return requested
}

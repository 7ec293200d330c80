package model

import (
	"fmt"
	"time"
)

type SessionStatus string

const (
	SessionNotStarted SessionStatus = "not_started"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// CanTransition reports whether a status change is legal. A completed
// session is terminal: stale auto-save writes must never reopen it.
func (s SessionStatus) CanTransition(to SessionStatus) bool {
	switch s {
	case SessionNotStarted:
		return to == SessionInProgress
	case SessionInProgress:
		return to == SessionCompleted
	default:
		return false
	}
}

// SessionRecord tracks one user's pass through one section. Created on
// first access, auto-saved on every answer or navigation event, and
// superseded (never deleted) by a new session on retake.
type SessionRecord struct {
	ID                   string            `json:"id" bson:"_id,omitempty"`
	UserID               string            `json:"userId" bson:"userId"`
	ProductType          string            `json:"productType" bson:"productType"`
	TestMode             TestMode          `json:"testMode" bson:"testMode"`
	SectionName          string            `json:"sectionName" bson:"sectionName"`
	Status               SessionStatus     `json:"status" bson:"status"`
	TotalQuestions       int               `json:"totalQuestions" bson:"totalQuestions"`
	CurrentQuestionIndex int               `json:"currentQuestionIndex" bson:"currentQuestionIndex"`
	Answers              map[string]string `json:"answers" bson:"answers"` // questionID -> raw answer
	FlaggedQuestions     []string          `json:"flaggedQuestions" bson:"flaggedQuestions"`
	TimeRemainingSeconds int               `json:"timeRemainingSeconds" bson:"timeRemainingSeconds"`
	FinalScore           int               `json:"finalScore" bson:"finalScore"` // percentage, set on completion
	SectionScores        map[string]int    `json:"sectionScores,omitempty" bson:"sectionScores,omitempty"`
	CorrectAnswers       int               `json:"correctAnswers" bson:"correctAnswers"`
	TotalTimeSeconds     int               `json:"totalTimeSeconds" bson:"totalTimeSeconds"`
	StartedAt            time.Time         `json:"startedAt" bson:"startedAt"`
	CompletedAt          *time.Time        `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

func (s *SessionRecord) Validate() error {
	if s.UserID == "" || s.ProductType == "" || s.TestMode == "" || s.SectionName == "" {
		return fmt.Errorf("session: missing user, product, mode, or section")
	}
	return nil
}

// SessionProgress is the auto-save payload. Last write wins for every
// field here; the status guard lives in the session repository.
type SessionProgress struct {
	CurrentQuestionIndex int               `json:"currentQuestionIndex"`
	Answers              map[string]string `json:"answers"`
	FlaggedQuestions     []string          `json:"flaggedQuestions"`
	TimeRemainingSeconds int               `json:"timeRemainingSeconds"`
}

// SessionCompletion is the completion payload.
type SessionCompletion struct {
	FinalScore       int            `json:"finalScore"`
	SectionScores    map[string]int `json:"sectionScores,omitempty"`
	CorrectAnswers   int            `json:"correctAnswers"`
	TotalTimeSeconds int            `json:"totalTimeSeconds"`
}

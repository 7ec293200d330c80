package model

import (
	"errors"
	"time"
)

// AttemptRecord is one submitted answer. Append-only; one per
// (user, session, question).
type AttemptRecord struct {
	ID               string    `json:"id" bson:"_id,omitempty"`
	QuestionID       string    `json:"questionId" bson:"questionId"`
	SessionID        string    `json:"sessionId" bson:"sessionId"`
	UserID           string    `json:"userId" bson:"userId"`
	UserAnswer       string    `json:"userAnswer" bson:"userAnswer"`
	IsCorrect        bool      `json:"isCorrect" bson:"isCorrect"`
	TimeSpentSeconds int       `json:"timeSpentSeconds" bson:"timeSpentSeconds"`
	AnsweredAt       time.Time `json:"answeredAt" bson:"answeredAt"`
}

func (a *AttemptRecord) Validate() error {
	if a.QuestionID == "" || a.SessionID == "" || a.UserID == "" {
		return errors.New("attempt: missing question, session, or user id")
	}
	return nil
}

// AssessmentRecord is the graded result for an essay response. It is
// written asynchronously by the grading pipeline, so its absence at read
// time is a normal state, not an error.
type AssessmentRecord struct {
	ID               string    `json:"id" bson:"_id,omitempty"`
	QuestionID       string    `json:"questionId" bson:"questionId"`
	SessionID        string    `json:"sessionId" bson:"sessionId"`
	UserID           string    `json:"userId" bson:"userId"`
	EarnedScore      float64   `json:"earnedScore" bson:"earnedScore"`
	MaxPossibleScore float64   `json:"maxPossibleScore" bson:"maxPossibleScore"`
	GradedAt         time.Time `json:"gradedAt" bson:"gradedAt"`
}

func (a *AssessmentRecord) Validate() error {
	if a.QuestionID == "" || a.SessionID == "" {
		return errors.New("assessment: missing question or session id")
	}
	if a.MaxPossibleScore <= 0 {
		return errors.New("assessment: maxPossibleScore must be positive")
	}
	return nil
}

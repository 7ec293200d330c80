package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"prepwise/internal/model"
)

// ErrSessionCompleted is returned when a write targets a session that
// has already been completed. Completion is terminal; the guard lives
// in the update filters so a stale concurrent auto-save can never
// reopen a finished session.
var ErrSessionCompleted = errors.New("session already completed")

// ErrInvalidTransition is returned for any other illegal status change,
// e.g. completing a session that never started.
var ErrInvalidTransition = errors.New("invalid session status transition")

type SessionRepo interface {
	Create(ctx context.Context, session *model.SessionRecord) error
	GetByID(ctx context.Context, id string) (*model.SessionRecord, error)
	// GetCurrent returns the newest non-completed session for the key,
	// or nil when the user has none to resume.
	GetCurrent(ctx context.Context, userID, productType string, testMode model.TestMode, sectionName string) (*model.SessionRecord, error)
	GetByUserAndProduct(ctx context.Context, userID, productType string) ([]*model.SessionRecord, error)
	GetByUserProductMode(ctx context.Context, userID, productType string, testMode model.TestMode) ([]*model.SessionRecord, error)
	GetCompletedSince(ctx context.Context, since time.Time) ([]*model.SessionRecord, error)
	UpdateProgress(ctx context.Context, id string, progress *model.SessionProgress) error
	Complete(ctx context.Context, id string, completion *model.SessionCompletion) error
}

type sessionRepo struct {
	collection *mongo.Collection
}

func NewSessionRepo(db *mongo.Database) SessionRepo {
	return &sessionRepo{
		collection: db.Collection("sessions"),
	}
}

func (r *sessionRepo) Create(ctx context.Context, session *model.SessionRecord) error {
	if err := session.Validate(); err != nil {
		return err
	}
	if session.ID == "" {
		session.ID = primitive.NewObjectID().Hex()
	}
	if session.Status == "" {
		session.Status = model.SessionNotStarted
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now()
	}
	if session.Answers == nil {
		session.Answers = map[string]string{}
	}

	_, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*model.SessionRecord, error) {
	var session model.SessionRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) GetCurrent(ctx context.Context, userID, productType string, testMode model.TestMode, sectionName string) (*model.SessionRecord, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "startedAt", Value: -1}})

	var session model.SessionRecord
	err := r.collection.FindOne(ctx, bson.M{
		"userId":      userID,
		"productType": productType,
		"testMode":    testMode,
		"sectionName": sectionName,
		"status":      bson.M{"$ne": model.SessionCompleted},
	}, opts).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) GetByUserAndProduct(ctx context.Context, userID, productType string) ([]*model.SessionRecord, error) {
	return r.find(ctx, bson.M{"userId": userID, "productType": productType})
}

func (r *sessionRepo) GetByUserProductMode(ctx context.Context, userID, productType string, testMode model.TestMode) ([]*model.SessionRecord, error) {
	return r.find(ctx, bson.M{"userId": userID, "productType": productType, "testMode": testMode})
}

func (r *sessionRepo) GetCompletedSince(ctx context.Context, since time.Time) ([]*model.SessionRecord, error) {
	return r.find(ctx, bson.M{
		"status":      model.SessionCompleted,
		"completedAt": bson.M{"$gte": since},
	})
}

// UpdateProgress is the auto-save write: last write wins on the
// progress fields, but the filter rejects completed sessions so the
// status transition stays monotonic.
func (r *sessionRepo) UpdateProgress(ctx context.Context, id string, progress *model.SessionProgress) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$ne": model.SessionCompleted}},
		bson.M{"$set": bson.M{
			"status":               model.SessionInProgress,
			"currentQuestionIndex": progress.CurrentQuestionIndex,
			"answers":              progress.Answers,
			"flaggedQuestions":     progress.FlaggedQuestions,
			"timeRemainingSeconds": progress.TimeRemainingSeconds,
		}},
	)
	if err != nil {
		return fmt.Errorf("update session progress: %w", err)
	}
	if result.MatchedCount == 0 {
		return r.completedOrMissing(ctx, id)
	}
	return nil
}

// Complete marks a session finished and records its totals. Only an
// in-progress session can complete; completing twice is rejected.
func (r *sessionRepo) Complete(ctx context.Context, id string, completion *model.SessionCompletion) error {
	now := time.Now()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": model.SessionInProgress},
		bson.M{"$set": bson.M{
			"status":           model.SessionCompleted,
			"finalScore":       completion.FinalScore,
			"sectionScores":    completion.SectionScores,
			"correctAnswers":   completion.CorrectAnswers,
			"totalTimeSeconds": completion.TotalTimeSeconds,
			"completedAt":      now,
		}},
	)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	if result.MatchedCount == 0 {
		return r.completedOrMissing(ctx, id)
	}
	return nil
}

func (r *sessionRepo) completedOrMissing(ctx context.Context, id string) error {
	session, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if session == nil {
		return mongo.ErrNoDocuments
	}
	if session.Status == model.SessionCompleted {
		return ErrSessionCompleted
	}
	return ErrInvalidTransition
}

func (r *sessionRepo) find(ctx context.Context, filter bson.M) ([]*model.SessionRecord, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []*model.SessionRecord
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"prepwise/internal/model"
)

type AttemptRepo interface {
	Create(ctx context.Context, attempt *model.AttemptRecord) error
	GetBySession(ctx context.Context, sessionID string) ([]*model.AttemptRecord, error)
	GetBySessions(ctx context.Context, sessionIDs []string) ([]*model.AttemptRecord, error)
}

type attemptRepo struct {
	collection *mongo.Collection
}

func NewAttemptRepo(db *mongo.Database) AttemptRepo {
	return &attemptRepo{
		collection: db.Collection("attempts"),
	}
}

func (r *attemptRepo) Create(ctx context.Context, attempt *model.AttemptRecord) error {
	if err := attempt.Validate(); err != nil {
		return err
	}
	if attempt.ID == "" {
		attempt.ID = primitive.NewObjectID().Hex()
	}
	if attempt.AnsweredAt.IsZero() {
		attempt.AnsweredAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, attempt)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (r *attemptRepo) GetBySession(ctx context.Context, sessionID string) ([]*model.AttemptRecord, error) {
	return r.find(ctx, bson.M{"sessionId": sessionID})
}

func (r *attemptRepo) GetBySessions(ctx context.Context, sessionIDs []string) ([]*model.AttemptRecord, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"sessionId": bson.M{"$in": sessionIDs}})
}

func (r *attemptRepo) find(ctx context.Context, filter bson.M) ([]*model.AttemptRecord, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var attempts []*model.AttemptRecord
	if err = cursor.All(ctx, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

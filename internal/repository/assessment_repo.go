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

type AssessmentRepo interface {
	Create(ctx context.Context, assessment *model.AssessmentRecord) error
	GetBySessions(ctx context.Context, sessionIDs []string) ([]*model.AssessmentRecord, error)
}

type assessmentRepo struct {
	collection *mongo.Collection
}

func NewAssessmentRepo(db *mongo.Database) AssessmentRepo {
	return &assessmentRepo{
		collection: db.Collection("assessments"),
	}
}

func (r *assessmentRepo) Create(ctx context.Context, assessment *model.AssessmentRecord) error {
	if err := assessment.Validate(); err != nil {
		return err
	}
	if assessment.ID == "" {
		assessment.ID = primitive.NewObjectID().Hex()
	}
	if assessment.GradedAt.IsZero() {
		assessment.GradedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, assessment)
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

func (r *assessmentRepo) GetBySessions(ctx context.Context, sessionIDs []string) ([]*model.AssessmentRecord, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": bson.M{"$in": sessionIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assessments []*model.AssessmentRecord
	if err = cursor.All(ctx, &assessments); err != nil {
		return nil, err
	}
	return assessments, nil
}

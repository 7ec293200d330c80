package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"prepwise/internal/model"
)

type QuestionRepo interface {
	Create(ctx context.Context, question *model.QuestionRecord) error
	// Upsert replaces the catalog entry with the same ID, or inserts it.
	// The content pipeline re-imports whole catalogs, so writes must be
	// repeatable.
	Upsert(ctx context.Context, question *model.QuestionRecord) error
	GetByID(ctx context.Context, id string) (*model.QuestionRecord, error)
	GetByIDs(ctx context.Context, ids []string) ([]*model.QuestionRecord, error)
	GetByProductAndMode(ctx context.Context, productType string, testMode model.TestMode) ([]*model.QuestionRecord, error)
}

type questionRepo struct {
	collection *mongo.Collection
}

func NewQuestionRepo(db *mongo.Database) QuestionRepo {
	return &questionRepo{
		collection: db.Collection("questions"),
	}
}

func (r *questionRepo) Create(ctx context.Context, question *model.QuestionRecord) error {
	if question.ID == "" {
		question.ID = primitive.NewObjectID().Hex()
	}
	if err := question.Validate(); err != nil {
		return err
	}

	_, err := r.collection.InsertOne(ctx, question)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

func (r *questionRepo) Upsert(ctx context.Context, question *model.QuestionRecord) error {
	if err := question.Validate(); err != nil {
		return err
	}

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": question.ID},
		bson.M{"$set": question},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert question: %w", err)
	}
	return nil
}

func (r *questionRepo) GetByID(ctx context.Context, id string) (*model.QuestionRecord, error) {
	var question model.QuestionRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&question)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &question, nil
}

func (r *questionRepo) GetByIDs(ctx context.Context, ids []string) ([]*model.QuestionRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []*model.QuestionRecord
	if err = cursor.All(ctx, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepo) GetByProductAndMode(ctx context.Context, productType string, testMode model.TestMode) ([]*model.QuestionRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"productType": productType,
		"testMode":    testMode,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []*model.QuestionRecord
	if err = cursor.All(ctx, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

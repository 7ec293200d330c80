package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"prepwise/internal/model"
)

// Seeds small nsw_selective and acer_scholarship catalogs plus a few
// drills, for local development against a fresh database.
func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "prepwise"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	coll := client.Database(dbName).Collection("questions")

	questions := diagnosticCatalog()
	questions = append(questions, acerCatalog()...)
	questions = append(questions, drillCatalog()...)

	inserted := 0
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			log.Fatalf("Invalid seed question: %v", err)
		}
		_, err := coll.UpdateOne(ctx,
			bson.M{"_id": q.ID},
			bson.M{"$set": q},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			log.Fatalf("Failed to upsert question %s: %v", q.ID, err)
		}
		inserted++
	}

	log.Printf("Seeded %d questions into %s.questions", inserted, dbName)
}

func diagnosticCatalog() []*model.QuestionRecord {
	type row struct {
		section  string
		subSkill string
		count    int
		answers  []string
	}
	rows := []row{
		{"Reading", "Inference", 5, []string{"A", "B", "C", "D", "A"}},
		{"Reading", "Main Idea", 5, []string{"B", "C", "A", "D", "B"}},
		{"Mathematical Reasoning", "Algebra", 5, []string{"C", "A", "D", "B", "C"}},
		{"Mathematical Reasoning", "Fractions", 5, []string{"D", "B", "A", "C", "D"}},
		{"Thinking Skills", "Logic", 5, []string{"A", "C", "B", "D", "A"}},
		{"Thinking Skills", "Pattern Recognition", 5, []string{"B", "D", "C", "A", "B"}},
	}

	var questions []*model.QuestionRecord
	for _, r := range rows {
		for i := 0; i < r.count; i++ {
			questions = append(questions, &model.QuestionRecord{
				ID:            fmt.Sprintf("nsw-diag-%s-%d", slug(r.subSkill), i+1),
				ProductType:   "nsw_selective",
				TestMode:      model.ModeDiagnostic,
				SectionName:   r.section,
				SubSkillName:  r.subSkill,
				Kind:          model.KindStandard,
				MaxPoints:     1,
				CorrectAnswer: r.answers[i],
			})
		}
	}

	questions = append(questions, &model.QuestionRecord{
		ID:           "nsw-diag-writing-1",
		ProductType:  "nsw_selective",
		TestMode:     model.ModeDiagnostic,
		SectionName:  "Writing",
		SubSkillName: "Persuasive Writing",
		Kind:         model.KindEssay,
		MaxPoints:    30,
	})
	return questions
}

func acerCatalog() []*model.QuestionRecord {
	type row struct {
		section  string
		subSkill string
		answers  []string
	}
	rows := []row{
		{"Humanities", "Text Analysis", []string{"B", "A", "D", "C"}},
		{"Humanities", "Interpretation", []string{"C", "D", "A", "B"}},
		{"Mathematics", "Problem Solving", []string{"A", "B", "C", "D"}},
		{"Mathematics", "Number Patterns", []string{"D", "C", "B", "A"}},
	}

	var questions []*model.QuestionRecord
	for _, r := range rows {
		for i, answer := range r.answers {
			questions = append(questions, &model.QuestionRecord{
				ID:            fmt.Sprintf("acer-diag-%s-%d", slug(r.subSkill), i+1),
				ProductType:   "acer_scholarship",
				TestMode:      model.ModeDiagnostic,
				SectionName:   r.section,
				SubSkillName:  r.subSkill,
				Kind:          model.KindStandard,
				MaxPoints:     1,
				CorrectAnswer: answer,
			})
		}
	}

	questions = append(questions, &model.QuestionRecord{
		ID:           "acer-diag-writing-1",
		ProductType:  "acer_scholarship",
		TestMode:     model.ModeDiagnostic,
		SectionName:  "Written Expression",
		SubSkillName: "Narrative Writing",
		Kind:         model.KindEssay,
		MaxPoints:    25,
	})
	return questions
}

func drillCatalog() []*model.QuestionRecord {
	answers := []string{"A", "B", "C", "D", "A", "B", "C", "D", "A", "B"}
	var questions []*model.QuestionRecord
	for i, answer := range answers {
		subSkill := "Algebra"
		if i >= 5 {
			subSkill = "Fractions"
		}
		questions = append(questions, &model.QuestionRecord{
			ID:            fmt.Sprintf("nsw-drill-%s-%d", slug(subSkill), i%5+1),
			ProductType:   "nsw_selective",
			TestMode:      model.ModeDrill,
			SectionName:   "Mathematical Reasoning",
			SubSkillName:  subSkill,
			Kind:          model.KindStandard,
			MaxPoints:     1,
			CorrectAnswer: answer,
		})
	}
	return questions
}

func slug(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r >= 'a' && r <= 'z':
			out = append(out, r)
		case r == ' ':
			out = append(out, '-')
		}
	}
	return string(out)
}

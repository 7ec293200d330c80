package model

import (
	"errors"
	"fmt"
)

// QuestionKind distinguishes binary-correctness questions from
// point-weighted free-response questions.
type QuestionKind string

const (
	KindStandard QuestionKind = "standard" // multiple choice, isCorrect scoring
	KindEssay    QuestionKind = "essay"    // graded asynchronously with partial credit
)

// TestMode identifies which part of a product's test flow a question or
// session belongs to.
type TestMode string

const (
	ModeDiagnostic TestMode = "diagnostic"
	ModePractice1  TestMode = "practice_1"
	ModePractice2  TestMode = "practice_2"
	ModePractice3  TestMode = "practice_3"
	ModePractice4  TestMode = "practice_4"
	ModePractice5  TestMode = "practice_5"
	// ModePracticeLegacy tags old practice sessions recorded before tests
	// were individually numbered.
	ModePracticeLegacy TestMode = "practice"
	ModeDrill          TestMode = "drill"
)

// PracticeTestCount is the number of numbered practice tests per product.
const PracticeTestCount = 5

// ValidMode reports whether m is a mode the API accepts.
func ValidMode(m TestMode) bool {
	switch m {
	case ModeDiagnostic, ModePractice1, ModePractice2, ModePractice3,
		ModePractice4, ModePractice5, ModePracticeLegacy, ModeDrill:
		return true
	}
	return false
}

// PracticeMode returns the mode for a numbered practice test (1-based).
func PracticeMode(n int) (TestMode, error) {
	if n < 1 || n > PracticeTestCount {
		return "", fmt.Errorf("practice test number out of range: %d", n)
	}
	return TestMode(fmt.Sprintf("practice_%d", n)), nil
}

// QuestionRecord is one catalog entry. Immutable; created by the content
// pipeline and read-only here.
type QuestionRecord struct {
	ID            string       `json:"id" bson:"_id,omitempty"`
	ProductType   string       `json:"productType" bson:"productType"`
	TestMode      TestMode     `json:"testMode" bson:"testMode"`
	SectionName   string       `json:"sectionName" bson:"sectionName"`
	SubSkillName  string       `json:"subSkillName" bson:"subSkillName"`
	Kind          QuestionKind `json:"kind" bson:"kind"`
	MaxPoints     int          `json:"maxPoints" bson:"maxPoints"`
	CorrectAnswer string       `json:"correctAnswer" bson:"correctAnswer"`
}

// Validate rejects malformed catalog rows at the store boundary so bad
// data never reaches the arithmetic.
func (q *QuestionRecord) Validate() error {
	if q.ID == "" {
		return errors.New("question: missing id")
	}
	if q.ProductType == "" || q.TestMode == "" {
		return fmt.Errorf("question %s: missing product or test mode", q.ID)
	}
	if q.SectionName == "" || q.SubSkillName == "" {
		return fmt.Errorf("question %s: missing section or sub-skill", q.ID)
	}
	if q.Kind != KindStandard && q.Kind != KindEssay {
		return fmt.Errorf("question %s: unknown kind %q", q.ID, q.Kind)
	}
	if q.MaxPoints < 1 {
		return fmt.Errorf("question %s: maxPoints must be >= 1, got %d", q.ID, q.MaxPoints)
	}
	return nil
}

package excel

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"prepwise/internal/model"
)

// ImportConfig defines the catalog import configuration
type ImportConfig struct {
	FilePath       string // Path to the Excel file
	SheetName      string // Name of the sheet to import
	IDColumn       string // Column with the question ID
	ProductColumn  string // Column with the product type
	ModeColumn     string // Column with the test mode
	SectionColumn  string // Column with the section name
	SubSkillColumn string // Column with the sub-skill name
	KindColumn     string // Column with the question kind (optional)
	PointsColumn   string // Column with the max points
	AnswerColumn   string // Column with the correct answer
	StartRow       int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		SheetName:      "Sheet1",
		IDColumn:       "A",
		ProductColumn:  "B",
		ModeColumn:     "C",
		SectionColumn:  "D",
		SubSkillColumn: "E",
		KindColumn:     "F",
		PointsColumn:   "G",
		AnswerColumn:   "H",
		StartRow:       2, // Skip the header row
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Upserted       int
	Errors         []string
}

// QuestionWriter is the slice of the question repository the importer
// needs.
type QuestionWriter interface {
	Upsert(ctx context.Context, question *model.QuestionRecord) error
}

// ImportCatalog imports catalog questions from an Excel file. Rows are
// upserted by ID so re-running an import is safe.
func ImportCatalog(ctx context.Context, repo QuestionWriter, config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}

	result := &ImportResult{
		Errors: make([]string, 0),
	}

	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}

		result.TotalProcessed++

		question, err := parseRow(row, config)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		if err := repo.Upsert(ctx, question); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		result.Upserted++
	}

	return result, nil
}

func parseRow(row []string, config ImportConfig) (*model.QuestionRecord, error) {
	question := &model.QuestionRecord{
		ID:            cell(row, config.IDColumn),
		ProductType:   cell(row, config.ProductColumn),
		TestMode:      model.TestMode(cell(row, config.ModeColumn)),
		SectionName:   cell(row, config.SectionColumn),
		SubSkillName:  cell(row, config.SubSkillColumn),
		CorrectAnswer: cell(row, config.AnswerColumn),
	}

	if !model.ValidMode(question.TestMode) {
		return nil, fmt.Errorf("unknown test mode %q", question.TestMode)
	}

	question.Kind = parseKind(cell(row, config.KindColumn), question.SectionName)

	points := cell(row, config.PointsColumn)
	if points == "" {
		question.MaxPoints = 1
	} else if _, err := fmt.Sscanf(points, "%d", &question.MaxPoints); err != nil {
		return nil, fmt.Errorf("invalid max points %q", points)
	}

	if err := question.Validate(); err != nil {
		return nil, err
	}
	return question, nil
}

// parseKind resolves the question kind. An explicit kind column wins;
// otherwise writing sections are assumed to hold essays. This name
// heuristic exists only here, at the ingestion boundary, so the rest of
// the system can rely on the stored Kind field.
func parseKind(raw, sectionName string) model.QuestionKind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(model.KindStandard):
		return model.KindStandard
	case string(model.KindEssay):
		return model.KindEssay
	}

	section := strings.ToLower(sectionName)
	if strings.Contains(section, "writing") || strings.Contains(section, "written expression") {
		return model.KindEssay
	}
	return model.KindStandard
}

func cell(row []string, column string) string {
	idx := columnToIndex(column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// columnToIndex converts an Excel column letter to a zero-based index
func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	if column == "" {
		return -1
	}
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}

package services

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/quizforge/attempt-service/internal/models"
	"github.com/quizforge/attempt-service/internal/repositories"
	"github.com/quizforge/attempt-service/internal/utils"
)

type exportService struct {
	attempts repositories.AttemptRepository
	logger   utils.Logger
}

func NewExportService(attempts repositories.AttemptRepository, logger utils.Logger) ExportService {
	return &exportService{
		attempts: attempts,
		logger:   logger,
	}
}

// ExportAttempt writes a summary sheet and a per-question breakdown
// sheet for one graded attempt.
func (s *exportService) ExportAttempt(ctx context.Context, sessionID string) ([]byte, error) {
	record, err := s.attempts.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt record: %w", err)
	}
	if record == nil {
		return nil, ErrAttemptNotFound
	}

	f := excelize.NewFile()
	if err := s.writeSummarySheet(f, record); err != nil {
		return nil, err
	}
	if err := s.writeBreakdownSheet(f, record); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	s.logger.InfoContext(ctx, "Exported attempt workbook",
		"session_id", sessionID,
		"responses", len(record.Responses))
	return buf.Bytes(), nil
}

func (s *exportService) writeSummarySheet(f *excelize.File, record *models.AttemptRecord) error {
	sheetName := "Summary"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	passed := "Fail"
	if record.Passed {
		passed = "Pass"
	}
	rows := [][]interface{}{
		{"Session ID", record.SessionID},
		{"Quiz ID", record.QuizID},
		{"Score", record.Score},
		{"Max Score", record.MaxScore},
		{"Percentage", record.Percentage},
		{"Result", passed},
		{"Time Spent (seconds)", record.ElapsedSeconds},
		{"Completed At", record.CompletedAt.Format("2006-01-02 15:04:05")},
	}
	for rowIndex, row := range rows {
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+1)
			f.SetCellValue(sheetName, cell, value)
		}
	}
	return nil
}

func (s *exportService) writeBreakdownSheet(f *excelize.File, record *models.AttemptRecord) error {
	sheetName := "Breakdown"
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headers := []string{"Question ID", "Type", "Answered", "Earned", "Max", "Full Credit"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, response := range record.Responses {
		row := []interface{}{
			response.QuestionID,
			string(response.QuestionType),
			len(response.Answer) > 0,
			response.Earned,
			response.Max,
			response.FullCredit,
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}
	return nil
}

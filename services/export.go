package services

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/vnkhanh/pathfinder-backend/models"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHistoryXLSX ghi lịch sử quiz ra workbook gồm 2 sheet: tổng quan và
// chi tiết từng câu trả lời.
func ExportHistoryXLSX(records []models.HistoryRecord) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const summary = "History"
	const details = "Answers"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, errors.WithStack(err)
	}
	if _, err := f.NewSheet(details); err != nil {
		return nil, errors.WithStack(err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	summaryHeader := []interface{}{"ID", "Date", "Class", "Category", "Difficulty", "Score", "Answered"}
	if err := f.SetSheetRow(summary, "A1", &summaryHeader); err != nil {
		return nil, errors.WithStack(err)
	}
	detailHeader := []interface{}{"History ID", "Question ID", "Answer", "Correct"}
	if err := f.SetSheetRow(details, "A1", &detailHeader); err != nil {
		return nil, errors.WithStack(err)
	}
	_ = f.SetRowStyle(summary, 1, 1, headerStyle)
	_ = f.SetRowStyle(details, 1, 1, headerStyle)

	detailRow := 2
	for i, rec := range records {
		row := []interface{}{
			rec.ID.String(),
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
			rec.Class,
			rec.Category,
			string(rec.Difficulty),
			rec.Score,
			len(rec.UserAnswers),
		}
		if err := f.SetSheetRow(summary, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, errors.WithStack(err)
		}

		for _, a := range rec.UserAnswers {
			line := []interface{}{rec.ID.String(), a.QuestionID.String(), a.UserAnswer, a.IsCorrect}
			if err := f.SetSheetRow(details, fmt.Sprintf("A%d", detailRow), &line); err != nil {
				return nil, errors.WithStack(err)
			}
			detailRow++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return buf, nil
}

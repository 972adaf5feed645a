package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/vnkhanh/pathfinder-backend/models"
	"github.com/vnkhanh/pathfinder-backend/services"
	"github.com/vnkhanh/pathfinder-backend/utils"
)

// khớp với size:64 của cột category_id/class_id
const maxHistoryLabel = 64

type AddHistoryInput struct {
	Category    string               `json:"category"`
	Class       string               `json:"class"`
	Difficulty  string               `json:"difficulty"`
	Score       int                  `json:"score"`
	UserAnswers []models.AnswerEntry `json:"userAnswers"`
}

// AddHistory ghi trực tiếp một HistoryRecord cho user hiện tại.
func AddHistory(c *gin.Context) {
	var input AddHistoryInput
	if !bindJSON(c, &input) {
		return
	}

	category := strings.TrimSpace(input.Category)
	class := strings.TrimSpace(input.Class)
	difficulty := models.Difficulty(strings.ToLower(strings.TrimSpace(input.Difficulty)))
	if category == "" || class == "" || difficulty == "" {
		utils.RespondError(c, utils.NewValidationError("category, class and difficulty are required"))
		return
	}
	if utf8.RuneCountInString(category) > maxHistoryLabel || utf8.RuneCountInString(class) > maxHistoryLabel {
		utils.RespondError(c, utils.NewValidationError(fmt.Sprintf("category and class must be at most %d characters", maxHistoryLabel)))
		return
	}
	if !difficulty.Valid() {
		utils.RespondError(c, utils.NewValidationError("Invalid difficulty"))
		return
	}
	if input.Score < 0 {
		utils.RespondError(c, utils.NewValidationError("score must not be negative"))
		return
	}
	if input.UserAnswers == nil {
		input.UserAnswers = []models.AnswerEntry{}
	}

	record := models.HistoryRecord{
		UserID:      currentUserID(c),
		Category:    category,
		Class:       class,
		Difficulty:  difficulty,
		Score:       input.Score,
		UserAnswers: input.UserAnswers,
	}
	if err := getDB(c).Create(&record).Error; err != nil {
		utils.RespondError(c, errors.WithStack(err))
		return
	}
	c.JSON(http.StatusCreated, record)
}

func userHistory(c *gin.Context) ([]models.HistoryRecord, error) {
	records := []models.HistoryRecord{}
	err := getDB(c).Where("user_id = ?", currentUserID(c)).Order("created_at DESC").Find(&records).Error
	return records, errors.WithStack(err)
}

func GetHistory(c *gin.Context) {
	records, err := userHistory(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// ExportHistory trả lịch sử làm bài dưới dạng file Excel.
func ExportHistory(c *gin.Context) {
	records, err := userHistory(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	buf, err := services.ExportHistoryXLSX(records)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	filename := fmt.Sprintf("history-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, services.XLSXContentType, buf.Bytes())
}

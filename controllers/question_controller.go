package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/vnkhanh/pathfinder-backend/models"
	"github.com/vnkhanh/pathfinder-backend/services"
	"github.com/vnkhanh/pathfinder-backend/utils"
)

const maxImageSize = 5 << 20

type AddQuestionInput struct {
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Options    []string `json:"options"`
	Difficulty string   `json:"difficulty"`
}

type UpdateQuestionInput struct {
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Options    *[]string `json:"options"`
	Difficulty string    `json:"difficulty"`
}

type GenerateQuestionsInput struct {
	ResourceID string `json:"resourceId"`
	Count      int    `json:"count"`
	Difficulty string `json:"difficulty"`
}

func cleanOptions(options []string) []string {
	out := make([]string, 0, len(options))
	for _, o := range options {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// loadClassAndCategory kiểm tra class và category tồn tại, category thuộc class.
func loadClassAndCategory(db *gorm.DB, classID, categoryID uuid.UUID) error {
	var class models.Class
	if err := findOr404(db, &class, classID, "Class not found"); err != nil {
		return err
	}
	var category models.Category
	if err := db.First(&category, "id = ? AND class_id = ?", categoryID, classID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError("Category not found")
		}
		return errors.WithStack(err)
	}
	return nil
}

func AddQuestion(c *gin.Context) {
	classID, ok := parseUUIDParam(c, "classId")
	if !ok {
		return
	}
	categoryID, ok := parseUUIDParam(c, "categoryId")
	if !ok {
		return
	}
	var input AddQuestionInput
	if !bindJSON(c, &input) {
		return
	}

	text := strings.TrimSpace(input.Question)
	answer := strings.TrimSpace(input.Answer)
	options := cleanOptions(input.Options)
	difficulty := models.Difficulty(strings.ToLower(strings.TrimSpace(input.Difficulty)))
	if text == "" || answer == "" || difficulty == "" {
		utils.RespondError(c, utils.NewValidationError("question, answer and difficulty are required"))
		return
	}
	if len(options) == 0 {
		utils.RespondError(c, utils.NewValidationError("options must be a non-empty array"))
		return
	}
	if !difficulty.Valid() {
		utils.RespondError(c, utils.NewValidationError("Invalid difficulty"))
		return
	}

	db := getDB(c)
	if err := loadClassAndCategory(db, classID, categoryID); err != nil {
		utils.RespondError(c, err)
		return
	}

	question := models.Question{
		Question:   text,
		Answer:     answer,
		Options:    options,
		Difficulty: difficulty,
		ClassID:    classID,
		CategoryID: categoryID,
	}
	if err := db.Create(&question).Error; err != nil {
		utils.RespondError(c, errors.WithStack(err))
		return
	}
	c.JSON(http.StatusCreated, question)
}

func listQuestions(c *gin.Context, query string, args ...interface{}) {
	questions := []models.Question{}
	q := getDB(c).Order("created_at ASC")
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Find(&questions).Error; err != nil {
		utils.RespondError(c, errors.WithStack(err))
		return
	}
	c.JSON(http.StatusOK, questions)
}

func GetQuestions(c *gin.Context) {
	listQuestions(c, "")
}

func GetQuestionsByClass(c *gin.Context) {
	classID, ok := parseUUIDParam(c, "classId")
	if !ok {
		return
	}
	listQuestions(c, "class_id = ?", classID)
}

func GetQuestionsByCategory(c *gin.Context) {
	classID, ok := parseUUIDParam(c, "classId")
	if !ok {
		return
	}
	categoryID, ok := parseUUIDParam(c, "categoryId")
	if !ok {
		return
	}
	listQuestions(c, "class_id = ? AND category_id = ?", classID, categoryID)
}

func GetQuestionByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var question models.Question
	if err := findOr404(getDB(c), &question, id, "Question not found"); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

func UpdateQuestion(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var input UpdateQuestionInput
	if !bindJSON(c, &input) {
		return
	}
	db := getDB(c)

	var question models.Question
	if err := findOr404(db, &question, id, "Question not found"); err != nil {
		utils.RespondError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if text := strings.TrimSpace(input.Question); text != "" {
		updates["question"] = text
	}
	if answer := strings.TrimSpace(input.Answer); answer != "" {
		updates["answer"] = answer
	}
	if input.Options != nil {
		options := cleanOptions(*input.Options)
		if len(options) == 0 {
			utils.RespondError(c, utils.NewValidationError("options must be a non-empty array"))
			return
		}
		question.Options = options
	}
	if d := strings.TrimSpace(input.Difficulty); d != "" {
		difficulty := models.Difficulty(strings.ToLower(d))
		if !difficulty.Valid() {
			utils.RespondError(c, utils.NewValidationError("Invalid difficulty"))
			return
		}
		updates["difficulty"] = difficulty
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&question).Updates(updates).Error; err != nil {
				return err
			}
		}
		// options đi qua serializer json nên cập nhật bằng struct
		if input.Options != nil {
			if err := tx.Model(&question).Select("options").Updates(&models.Question{Options: question.Options}).Error; err != nil {
				return err
			}
		}
		return tx.First(&question, "id = ?", id).Error
	})
	if err != nil {
		utils.RespondError(c, errors.WithStack(err))
		return
	}
	c.JSON(http.StatusOK, question)
}

func DeleteQuestion(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	db := getDB(c)

	var question models.Question
	if err := findOr404(db, &question, id, "Question not found"); err != nil {
		utils.RespondError(c, err)
		return
	}
	if err := db.Delete(&models.Question{}, "id = ?", id).Error; err != nil {
		utils.RespondError(c, errors.WithStack(err))
		return
	}

	if question.Image != nil && *question.Image != "" {
		if err := utils.DeleteImage(*question.Image); err != nil {
			utils.Log.Warn().Err(err).Str("questionId", id.String()).Msg("failed to delete question image")
		}
	}
	c.Status(http.StatusNoContent)
}

// UploadQuestionImage nhận multipart field "image" và lưu lên Supabase.
func UploadQuestionImage(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	db := getDB(c)

	var question models.Question
	if err := findOr404(db, &question, id, "Question not found"); err != nil {
		utils.RespondError(c, err)
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		utils.RespondError(c, utils.NewValidationError("image file is required"))
		return
	}
	if fileHeader.Size > maxImageSize {
		utils.RespondError(c, utils.NewValidationError("Image is too large"))
		return
	}
	if !strings.HasPrefix(fileHeader.Header.Get("Content-Type"), "image/") {
		utils.RespondError(c, utils.NewValidationError("File must be an image"))
		return
	}

	url, err := utils.UploadImage(fileHeader, question.ID.String())
	if err != nil {
		utils.RespondError(c, utils.NewInternalError(err, "Could not upload image"))
		return
	}
	if err := db.Model(&question).Update("image", url).Error; err != nil {
		utils.RespondError(c, errors.WithStack(err))
		return
	}
	question.Image = &url
	c.JSON(http.StatusOK, question)
}

// GenerateQuestionsFromResource dùng Gemini sinh câu hỏi từ nội dung resource.
func GenerateQuestionsFromResource(c *gin.Context) {
	classID, ok := parseUUIDParam(c, "classId")
	if !ok {
		return
	}
	categoryID, ok := parseUUIDParam(c, "categoryId")
	if !ok {
		return
	}
	var input GenerateQuestionsInput
	if !bindJSON(c, &input) {
		return
	}
	resourceID, err := parseUUIDField(input.ResourceID, "resourceId")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	difficulty := models.Difficulty(strings.ToLower(strings.TrimSpace(input.Difficulty)))

	db := getDB(c)
	if err := loadClassAndCategory(db, classID, categoryID); err != nil {
		utils.RespondError(c, err)
		return
	}
	var resource models.Resource
	if err := findOr404(db, &resource, resourceID, "Resource not found"); err != nil {
		utils.RespondError(c, err)
		return
	}

	generated, err := services.GenerateQuestions(c.Request.Context(), resource.Content, input.Count, difficulty)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	questions := make([]models.Question, 0, len(generated))
	for _, g := range generated {
		questions = append(questions, models.Question{
			Question:   g.Question,
			Answer:     g.Answer,
			Options:    g.Options,
			Difficulty: difficulty,
			ClassID:    classID,
			CategoryID: categoryID,
		})
	}
	if len(questions) > 0 {
		if err := db.Create(&questions).Error; err != nil {
			utils.RespondError(c, errors.WithStack(err))
			return
		}
	}
	c.JSON(http.StatusCreated, questions)
}

package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vnkhanh/pathfinder-backend/models"
	"github.com/vnkhanh/pathfinder-backend/services"
	"github.com/vnkhanh/pathfinder-backend/utils"
	"github.com/vnkhanh/pathfinder-backend/ws"
)

type StartQuizInput struct {
	CategoryID   string `json:"categoryId"`
	ClassID      string `json:"classId"`
	Difficulty   string `json:"difficulty"`
	NumQuestions int    `json:"numQuestions"`
}

type SubmitAnswerInput struct {
	SessionID  string `json:"sessionId"`
	QuestionID string `json:"questionId"`
	UserAnswer string `json:"userAnswer"`
}

type EndQuizInput struct {
	SessionID string `json:"sessionId"`
}

// quizQuestionView là câu hỏi trả cho client, không kèm đáp án.
type quizQuestionView struct {
	ID         uuid.UUID         `json:"id"`
	Question   string            `json:"question"`
	Options    []string          `json:"options"`
	Difficulty models.Difficulty `json:"difficulty"`
	Image      *string           `json:"image,omitempty"`
}

type quizSessionView struct {
	ID         uuid.UUID          `json:"id"`
	UserID     uuid.UUID          `json:"userId"`
	CategoryID uuid.UUID          `json:"categoryId"`
	ClassID    uuid.UUID          `json:"classId"`
	Difficulty models.Difficulty  `json:"difficulty"`
	Questions  []quizQuestionView `json:"questions"`
	Score      int                `json:"score"`
	StartTime  time.Time          `json:"startTime"`
}

func newQuizSessionView(s *models.QuizSession) quizSessionView {
	questions := make([]quizQuestionView, 0, len(s.Questions))
	for _, q := range s.Questions {
		questions = append(questions, quizQuestionView{
			ID:         q.ID,
			Question:   q.Question,
			Options:    q.Options,
			Difficulty: q.Difficulty,
			Image:      q.Image,
		})
	}
	return quizSessionView{
		ID:         s.ID,
		UserID:     s.UserID,
		CategoryID: s.CategoryID,
		ClassID:    s.ClassID,
		Difficulty: s.Difficulty,
		Questions:  questions,
		Score:      s.Score,
		StartTime:  s.StartTime,
	}
}

func StartQuiz(c *gin.Context) {
	var input StartQuizInput
	if !bindJSON(c, &input) {
		return
	}
	classID, err := parseUUIDField(input.ClassID, "classId")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	categoryID, err := parseUUIDField(input.CategoryID, "categoryId")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	session, err := services.StartQuiz(getDB(c), services.StartQuizInput{
		UserID:       currentUserID(c),
		ClassID:      classID,
		CategoryID:   categoryID,
		Difficulty:   models.Difficulty(strings.ToLower(strings.TrimSpace(input.Difficulty))),
		NumQuestions: input.NumQuestions,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Quiz started",
		"quizSession": newQuizSessionView(session),
	})
}

func SubmitAnswer(c *gin.Context) {
	var input SubmitAnswerInput
	if !bindJSON(c, &input) {
		return
	}
	sessionID, err := parseUUIDField(input.SessionID, "sessionId")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	questionID, err := parseUUIDField(input.QuestionID, "questionId")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	result, err := services.SubmitAnswer(getDB(c), currentUserID(c), sessionID, questionID, input.UserAnswer)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	ws.SendQuizAnswer(sessionID.String(), questionID.String(), result.IsCorrect, result.Score)
	c.JSON(http.StatusOK, gin.H{
		"message":   "Answer submitted",
		"isCorrect": result.IsCorrect,
		"score":     result.Score,
	})
}

func EndQuiz(c *gin.Context) {
	var input EndQuizInput
	if !bindJSON(c, &input) {
		return
	}
	sessionID, err := parseUUIDField(input.SessionID, "sessionId")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	history, err := services.EndQuiz(getDB(c), currentUserID(c), sessionID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	ws.SendQuizEnded(sessionID.String(), history.ID.String(), history.Score)
	c.JSON(http.StatusOK, gin.H{
		"message": "Quiz ended",
		"history": history,
	})
}

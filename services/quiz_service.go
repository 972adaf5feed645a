package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/pathfinder-backend/models"
	"github.com/vnkhanh/pathfinder-backend/utils"
)

const MaxQuizQuestions = 100

type StartQuizInput struct {
	UserID       uuid.UUID
	ClassID      uuid.UUID
	CategoryID   uuid.UUID
	Difficulty   models.Difficulty
	NumQuestions int
}

type SubmitResult struct {
	IsCorrect bool
	Score     int
	Answer    models.QuizAnswer
}

// StartQuiz chọn tối đa NumQuestions câu hỏi theo thứ tự tạo và chụp lại
// snapshot vào phiên mới.
func StartQuiz(db *gorm.DB, in StartQuizInput) (*models.QuizSession, error) {
	if in.NumQuestions < 1 {
		return nil, utils.NewValidationError("numQuestions must be at least 1")
	}
	if in.NumQuestions > MaxQuizQuestions {
		return nil, utils.NewValidationError("numQuestions is too large")
	}
	if !in.Difficulty.Valid() {
		return nil, utils.NewValidationError("Invalid difficulty")
	}

	var questions []models.Question
	err := db.Where("class_id = ? AND category_id = ? AND difficulty = ?", in.ClassID, in.CategoryID, in.Difficulty).
		Order("created_at ASC").
		Limit(in.NumQuestions).
		Find(&questions).Error
	if err != nil {
		return nil, errors.WithStack(err)
	}

	snapshots := make([]models.QuestionSnapshot, 0, len(questions))
	for _, q := range questions {
		snapshots = append(snapshots, models.QuestionSnapshot{
			ID:         q.ID,
			Question:   q.Question,
			Answer:     q.Answer,
			Options:    q.Options,
			Difficulty: q.Difficulty,
			Image:      q.Image,
		})
	}

	session := &models.QuizSession{
		UserID:     in.UserID,
		ClassID:    in.ClassID,
		CategoryID: in.CategoryID,
		Difficulty: in.Difficulty,
		Questions:  snapshots,
		Score:      0,
		StartTime:  time.Now(),
	}
	if err := db.Create(session).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return session, nil
}

func lockSession(tx *gorm.DB, userID, sessionID uuid.UUID) (*models.QuizSession, error) {
	var session models.QuizSession
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&session, "id = ?", sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("Quiz session not found")
		}
		return nil, errors.WithStack(err)
	}
	if session.UserID != userID {
		return nil, utils.NewForbiddenError("You do not own this quiz session")
	}
	return &session, nil
}

// SubmitAnswer ghi câu trả lời vào log và cộng điểm nguyên tử nếu đúng.
// Nộp lại cùng một câu hỏi vẫn được chấm điểm.
func SubmitAnswer(db *gorm.DB, userID, sessionID, questionID uuid.UUID, userAnswer string) (*SubmitResult, error) {
	var result SubmitResult

	err := db.Transaction(func(tx *gorm.DB) error {
		session, err := lockSession(tx, userID, sessionID)
		if err != nil {
			return err
		}

		question, ok := session.FindQuestion(questionID)
		if !ok {
			return utils.NewNotFoundError("Question not found in this quiz session")
		}

		// phiên đang bị khoá nên MAX(seq) không bị tranh chấp
		var lastSeq int
		if err := tx.Model(&models.QuizAnswer{}).
			Where("session_id = ?", sessionID).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&lastSeq).Error; err != nil {
			return errors.WithStack(err)
		}

		result.IsCorrect = question.Answer == userAnswer
		result.Answer = models.QuizAnswer{
			SessionID:  sessionID,
			Seq:        lastSeq + 1,
			QuestionID: questionID,
			UserAnswer: userAnswer,
			IsCorrect:  result.IsCorrect,
		}
		if err := tx.Create(&result.Answer).Error; err != nil {
			return errors.WithStack(err)
		}

		if result.IsCorrect {
			res := tx.Model(&models.QuizSession{}).
				Where("id = ?", sessionID).
				UpdateColumn("score", gorm.Expr("score + ?", 1))
			if res.Error != nil {
				return errors.WithStack(res.Error)
			}
			if res.RowsAffected == 0 {
				return utils.NewNotFoundError("Quiz session not found")
			}
		}

		var scores []int
		if err := tx.Model(&models.QuizSession{}).Where("id = ?", sessionID).Pluck("score", &scores).Error; err != nil {
			return errors.WithStack(err)
		}
		if len(scores) == 0 {
			return utils.NewNotFoundError("Quiz session not found")
		}
		result.Score = scores[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// EndQuiz chuyển phiên thành HistoryRecord và xoá phiên trong cùng một
// transaction. Gọi lần hai trả NotFound.
func EndQuiz(db *gorm.DB, userID, sessionID uuid.UUID) (*models.HistoryRecord, error) {
	var history models.HistoryRecord

	err := db.Transaction(func(tx *gorm.DB) error {
		session, err := lockSession(tx, userID, sessionID)
		if err != nil {
			return err
		}

		var answers []models.QuizAnswer
		if err := tx.Where("session_id = ?", sessionID).Order("seq ASC").Find(&answers).Error; err != nil {
			return errors.WithStack(err)
		}

		entries := make([]models.AnswerEntry, 0, len(answers))
		for _, a := range answers {
			entries = append(entries, models.AnswerEntry{
				QuestionID: a.QuestionID,
				UserAnswer: a.UserAnswer,
				IsCorrect:  a.IsCorrect,
			})
		}

		history = models.HistoryRecord{
			UserID:      session.UserID,
			Category:    session.CategoryID.String(),
			Class:       session.ClassID.String(),
			Difficulty:  session.Difficulty,
			Score:       session.Score,
			UserAnswers: entries,
		}
		if err := tx.Create(&history).Error; err != nil {
			return errors.WithStack(err)
		}

		if err := tx.Where("session_id = ?", sessionID).Delete(&models.QuizAnswer{}).Error; err != nil {
			return errors.WithStack(err)
		}
		res := tx.Where("id = ?", sessionID).Delete(&models.QuizSession{})
		if res.Error != nil {
			return errors.WithStack(res.Error)
		}
		if res.RowsAffected != 1 {
			return utils.NewNotFoundError("Quiz session not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &history, nil
}

// CleanupStaleSessions xoá các phiên bắt đầu trước cutoff cùng log câu trả lời.
func CleanupStaleSessions(db *gorm.DB, cutoff time.Time) (int64, error) {
	var deleted int64
	err := db.Transaction(func(tx *gorm.DB) error {
		stale := tx.Model(&models.QuizSession{}).Select("id").Where("start_time < ?", cutoff)
		if err := tx.Where("session_id IN (?)", stale).Delete(&models.QuizAnswer{}).Error; err != nil {
			return errors.WithStack(err)
		}
		res := tx.Where("start_time < ?", cutoff).Delete(&models.QuizSession{})
		if res.Error != nil {
			return errors.WithStack(res.Error)
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted, err
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnswerEntry struct {
	QuestionID uuid.UUID `json:"questionId"`
	UserAnswer string    `json:"userAnswer"`
	IsCorrect  bool      `json:"isCorrect"`
}

// HistoryRecord lưu kết quả một lượt quiz đã kết thúc. Không bao giờ được cập nhật.
type HistoryRecord struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID     `gorm:"type:uuid;not null;index" json:"userId"`
	Category    string        `gorm:"column:category_id;size:64" json:"category"`
	Class       string        `gorm:"column:class_id;size:64" json:"class"`
	Difficulty  Difficulty    `gorm:"type:varchar(10)" json:"difficulty"`
	Score       int           `gorm:"not null;default:0" json:"score"`
	UserAnswers []AnswerEntry `gorm:"type:text;serializer:json" json:"userAnswers"`
	CreatedAt   time.Time     `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (h *HistoryRecord) BeforeCreate(tx *gorm.DB) error {
	assignID(&h.ID)
	return nil
}

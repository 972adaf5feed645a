package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuestionSnapshot là bản chụp câu hỏi tại thời điểm bắt đầu quiz.
type QuestionSnapshot struct {
	ID         uuid.UUID  `json:"id"`
	Question   string     `json:"question"`
	Answer     string     `json:"answer"`
	Options    []string   `json:"options"`
	Difficulty Difficulty `json:"difficulty"`
	Image      *string    `json:"image,omitempty"`
}

type QuizSession struct {
	ID         uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"userId"`
	CategoryID uuid.UUID          `gorm:"type:uuid;not null" json:"categoryId"`
	ClassID    uuid.UUID          `gorm:"type:uuid;not null" json:"classId"`
	Difficulty Difficulty         `gorm:"type:varchar(10);not null" json:"difficulty"`
	Questions  []QuestionSnapshot `gorm:"type:text;serializer:json" json:"questions"`
	Score      int                `gorm:"not null;default:0" json:"score"`
	StartTime  time.Time          `gorm:"not null;index" json:"startTime"`
}

func (s *QuizSession) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	if s.StartTime.IsZero() {
		s.StartTime = time.Now()
	}
	return nil
}

// FindQuestion trả về câu hỏi trong snapshot theo ID.
func (s *QuizSession) FindQuestion(id uuid.UUID) (QuestionSnapshot, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return QuestionSnapshot{}, false
}

// QuizAnswer là log câu trả lời (chỉ thêm, không sửa) của một phiên quiz.
type QuizAnswer struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID  uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_quiz_answer_seq,priority:1" json:"sessionId"`
	// Seq tăng dần trong mỗi phiên, giữ đúng thứ tự nộp khi AnsweredAt trùng nhau.
	Seq        int       `gorm:"not null;default:0;uniqueIndex:idx_quiz_answer_seq,priority:2" json:"seq"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null" json:"questionId"`
	UserAnswer string    `gorm:"type:text" json:"userAnswer"`
	IsCorrect  bool      `gorm:"not null" json:"isCorrect"`
	AnsweredAt time.Time `gorm:"not null;index" json:"answeredAt"`
}

func (a *QuizAnswer) BeforeCreate(tx *gorm.DB) error {
	assignID(&a.ID)
	if a.AnsweredAt.IsZero() {
		a.AnsweredAt = time.Now()
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

type Question struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Question   string     `gorm:"type:text;not null" json:"question"`
	Answer     string     `gorm:"type:text;not null" json:"answer"`
	Options    []string   `gorm:"type:text;serializer:json" json:"options"`
	Difficulty Difficulty `gorm:"type:varchar(10);not null;index:idx_question_lookup" json:"difficulty"`
	Image      *string    `gorm:"type:text" json:"image,omitempty"`
	ClassID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_question_lookup" json:"classId"`
	CategoryID uuid.UUID  `gorm:"type:uuid;not null;index:idx_question_lookup" json:"categoryId"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	assignID(&q.ID)
	return nil
}

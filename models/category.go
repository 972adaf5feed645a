package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category thuộc về một Class; tên là duy nhất trong phạm vi class.
type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:150;not null;uniqueIndex:idx_category_class_name" json:"name"`
	Slug        string    `gorm:"size:150;index" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	ClassID     uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_category_class_name" json:"classId"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}

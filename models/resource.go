package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Resource struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string     `gorm:"size:255;uniqueIndex;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Content     string     `gorm:"type:text" json:"content"`
	ClassID     *uuid.UUID `gorm:"type:uuid;index" json:"classId"`
	CategoryID  *uuid.UUID `gorm:"type:uuid;index" json:"categoryId"`
	Likes       int        `gorm:"not null;default:0" json:"likes"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`

	// Tính từ bảng resource_likes
	LikedBy []uuid.UUID `gorm:"-" json:"likedBy"`
}

func (r *Resource) BeforeCreate(tx *gorm.DB) error {
	assignID(&r.ID)
	return nil
}

// ResourceLike: mỗi user chỉ like một resource một lần.
type ResourceLike struct {
	ResourceID uuid.UUID `gorm:"type:uuid;primaryKey" json:"resourceId"`
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"userId"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

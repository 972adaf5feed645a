package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RolePathfinder Role = "pathfinder" // Người học
	RoleAdmin      Role = "admin"      // Quản trị nội dung
	RoleSuperuser  Role = "superuser"  // Duyệt admin, toàn quyền
)

func (r Role) Valid() bool {
	switch r {
	case RolePathfinder, RoleAdmin, RoleSuperuser:
		return true
	}
	return false
}

// UserStatus theo dõi yêu cầu làm admin.
type UserStatus string

const (
	StatusPending  UserStatus = "pending"
	StatusApproved UserStatus = "approved"
	StatusRejected UserStatus = "rejected"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username  string    `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Firstname string    `gorm:"size:100;not null" json:"firstname"`
	Lastname  string    `gorm:"size:100;not null" json:"lastname"`
	Password  string    `gorm:"type:text;not null" json:"-"`
	Role      Role      `gorm:"type:varchar(20);not null;default:'pathfinder'" json:"role"`

	// nil khi user chưa từng yêu cầu quyền admin
	Status       *UserStatus `gorm:"type:varchar(20);index" json:"status"`
	RefreshToken *string     `gorm:"type:text;index" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	assignID(&u.ID)
	return nil
}

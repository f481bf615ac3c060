package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRole 代表使用者在平台上的角色
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleClient   UserRole = "client"
	RoleSupplier UserRole = "supplier"
)

// User 代表貨運媒合平台的使用者
// 身份驗證由外部的 SSO 提供者負責，這裡只保留平台內需要的基本資訊
type User struct {
	gorm.Model

	ID       uuid.UUID `gorm:"type:uuid;primaryKey;<-:create"`
	Username string    `gorm:"type:varchar(255);not null"`
	Email    string    `gorm:"type:varchar(255)"`
	Role     UserRole  `gorm:"type:varchar(16);not null"`

	// 外鍵關聯
	Identities []UserIdentity `gorm:"foreignKey:UserID"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

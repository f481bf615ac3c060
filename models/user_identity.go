package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserIdentity 代表使用者在某個 SSO 提供者上的身份
// 用提供者名稱加上提供者核發的識別字串來對應平台內的使用者
type UserIdentity struct {
	gorm.Model

	ID       uuid.UUID `gorm:"type:uuid;primaryKey;<-:create"`
	UserID   uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_identity_provider_user_id,where:deleted_at IS NULL;not null;<-:create"`
	Provider string    `gorm:"type:varchar(32);uniqueIndex:idx_user_identity_provider_user_id;uniqueIndex:idx_user_identity_provider_identity,where:deleted_at IS NULL;not null;<-:create"`
	Identity string    `gorm:"type:text;uniqueIndex:idx_user_identity_provider_identity;not null;<-:create"`

	User *User `gorm:"foreignKey:UserID"`
}

func (i *UserIdentity) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

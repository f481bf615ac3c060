package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType 代表通知的種類
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// Notification 代表發送給使用者的站內通知
type Notification struct {
	gorm.Model

	ID      uuid.UUID        `gorm:"type:uuid;primaryKey;<-:create"`
	UserID  uuid.UUID        `gorm:"type:uuid;not null;index;<-:create"`
	Title   string           `gorm:"type:varchar(255);not null;<-:create"`
	Message string           `gorm:"type:text;not null;<-:create"`
	Type    NotificationType `gorm:"type:varchar(16);not null;<-:create"`
	Link    string           `gorm:"type:text;<-:create"`
	Read    bool             `gorm:"not null"`

	User *User `gorm:"foreignKey:UserID"`
}

func (n *Notification) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatThread 代表貨主與供應商針對某張需求單的對話串
// 同一需求單與同一供應商之間最多只有一條對話串
type ChatThread struct {
	gorm.Model

	ID         uuid.UUID `gorm:"type:uuid;primaryKey;<-:create"`
	ListingID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_chat_threads_listing_supplier;<-:create"`
	ClientID   uuid.UUID `gorm:"type:uuid;not null;index;<-:create"`
	SupplierID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_chat_threads_listing_supplier;<-:create"`

	// 外鍵關聯
	Listing  *Listing `gorm:"foreignKey:ListingID"`
	Client   *User    `gorm:"foreignKey:ClientID"`
	Supplier *User    `gorm:"foreignKey:SupplierID"`
}

func (t *ChatThread) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// ChatMessage 代表對話串中的一則訊息
type ChatMessage struct {
	gorm.Model

	ID       uuid.UUID `gorm:"type:uuid;primaryKey;<-:create"`
	ThreadID uuid.UUID `gorm:"type:uuid;not null;index;<-:create"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;<-:create"`
	Body     string    `gorm:"type:text;not null;<-:create"`

	Thread *ChatThread `gorm:"foreignKey:ThreadID"`
	Author *User       `gorm:"foreignKey:AuthorID"`
}

func (m *ChatMessage) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

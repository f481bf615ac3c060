package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BidStatus 代表報價的狀態
type BidStatus string

const (
	BidPending  BidStatus = "pending"  // 等待貨主決定
	BidAccepted BidStatus = "accepted" // 已被貨主接受
	BidRejected BidStatus = "rejected" // 已被貨主拒絕
)

// Bid 代表供應商對貨運需求單的報價
// 記錄報價金額、留言、報價者以及目前的報價狀態
type Bid struct {
	gorm.Model

	ID        uuid.UUID `gorm:"type:uuid;primaryKey;<-:create"`
	ListingID uuid.UUID `gorm:"type:uuid;not null;index;<-:create"`
	BidderID  uuid.UUID `gorm:"type:uuid;not null;index;<-:create"`
	Amount    int64     `gorm:"type:bigint;not null;<-:create"`
	Message   string    `gorm:"type:text;<-:create"`
	Status    BidStatus `gorm:"type:varchar(16);not null;index"`

	// 外鍵關聯
	Listing *Listing `gorm:"foreignKey:ListingID"`
	Bidder  *User    `gorm:"foreignKey:BidderID"`
}

func (b *Bid) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

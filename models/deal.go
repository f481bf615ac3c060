package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DealStatus 代表成交紀錄的狀態
type DealStatus string

const (
	DealNew        DealStatus = "new"
	DealProcessing DealStatus = "processing"
	DealDone       DealStatus = "done"
	DealCancelled  DealStatus = "cancelled"
)

// Deal 代表貨運需求單結標後產生的成交紀錄
// 成交紀錄在建立之後不會再被修改
type Deal struct {
	gorm.Model

	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;<-:create"`
	ListingID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_deal_listing_id,where:deleted_at IS NULL;<-:create"`
	BidID        uuid.UUID  `gorm:"type:uuid;not null;<-:create"`
	ClientID     uuid.UUID  `gorm:"type:uuid;not null;index;<-:create"`
	SupplierID   uuid.UUID  `gorm:"type:uuid;not null;index;<-:create"`
	AgreedAmount int64      `gorm:"type:bigint;not null;<-:create"`
	Currency     string     `gorm:"type:varchar(8);not null;<-:create"`
	Status       DealStatus `gorm:"type:varchar(16);not null"`

	// 外鍵關聯
	Listing  *Listing `gorm:"foreignKey:ListingID"`
	Bid      *Bid     `gorm:"foreignKey:BidID"`
	Client   *User    `gorm:"foreignKey:ClientID"`
	Supplier *User    `gorm:"foreignKey:SupplierID"`
}

func (d *Deal) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

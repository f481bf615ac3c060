package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListingStatus 代表貨運需求單的狀態
type ListingStatus string

const (
	ListingOpen       ListingStatus = "open"        // 開放出價中
	ListingInProgress ListingStatus = "in-progress" // 已有得標供應商，等待結案
	ListingClosed     ListingStatus = "closed"      // 已結案，不再接受任何變更
)

// TransportMode 代表貨運方式
type TransportMode string

const (
	TransportRoad       TransportMode = "road"
	TransportRail       TransportMode = "rail"
	TransportAir        TransportMode = "air"
	TransportSea        TransportMode = "sea"
	TransportMultimodal TransportMode = "multimodal"
)

// Listing 代表貨運媒合平台上的一筆貨運需求(拍賣單)
// 包含貨運路線、預算、貨運方式與目前的拍賣狀態
type Listing struct {
	gorm.Model

	ID          uuid.UUID     `gorm:"type:uuid;primaryKey;<-:create"`
	OwnerID     uuid.UUID     `gorm:"type:uuid;not null;index;<-:create"`
	Title       string        `gorm:"type:varchar(255);not null"`
	Description string        `gorm:"type:text;not null"`
	Origin      string        `gorm:"type:varchar(255);not null"`
	Destination string        `gorm:"type:varchar(255);not null"`
	Price       int64         `gorm:"type:bigint;not null"`
	Currency    string        `gorm:"type:varchar(8);not null"`
	Transport   TransportMode `gorm:"type:varchar(16);not null"`
	Status      ListingStatus `gorm:"type:varchar(16);not null;index"`

	// 外鍵關聯
	Owner *User `gorm:"foreignKey:OwnerID"`
	Bids  []Bid
}

func (l *Listing) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

package marketplace

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wayx/models"
)

// PlaceBid 供應商對需求單提出報價
// 報價金額必須為正數，需求單必須存在且尚未結案，貨主不能對自己的需求單報價
// 新報價一律從 pending 狀態開始
func (m *Marketplace) PlaceBid(ctx context.Context, bidderID, listingID uuid.UUID, amount int64, message string) (*models.Bid, error) {
	const op = "PlaceBid"
	if amount <= 0 {
		return nil, validationErr("bid amount must be positive, got %d", amount)
	}
	var bid *models.Bid
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 鎖定需求單列，避免結案交易在狀態檢查與寫入報價之間提交
		listing := models.Listing{ID: listingID}
		if result := lockListingRow(tx).First(&listing); result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrListingNotFound
			}
			return fmt.Errorf("[%s] Fail to find listing, err=%w", op, result.Error)
		}
		if listing.Status == models.ListingClosed {
			return ErrListingClosed
		}
		if listing.OwnerID == bidderID {
			return ErrUnauthorized
		}
		record := models.Bid{
			ListingID: listingID,
			BidderID:  bidderID,
			Amount:    amount,
			Message:   message,
			Status:    models.BidPending,
		}
		if result := tx.Create(&record); result.Error != nil {
			return fmt.Errorf("[%s] Fail to create bid, err=%w", op, result.Error)
		}
		bid = &record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bid, nil
}

// ListBids 依建立時間新到舊列出需求單下的所有報價
func (m *Marketplace) ListBids(ctx context.Context, listingID uuid.UUID) ([]models.Bid, error) {
	const op = "ListBids"
	listing := models.Listing{ID: listingID}
	if result := m.db.WithContext(ctx).Select("id").First(&listing); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("[%s] Fail to find listing, err=%w", op, result.Error)
	}

	var bids []models.Bid
	result := m.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
		Find(&bids)
	if result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to list bids, err=%w", op, result.Error)
	}
	return bids, nil
}

// SetBidStatus 結標流程使用的底層原語，把單一報價從 pending 轉為 accepted 或 rejected
// 狀態轉移是單向的，已經定案的報價不能再變更
func (m *Marketplace) SetBidStatus(ctx context.Context, listingID, bidID uuid.UUID, status models.BidStatus) error {
	return m.setBidStatus(m.db.WithContext(ctx), listingID, bidID, status)
}

// setBidStatus 以 rows-affected 條件更新確保 pending 前置條件成立
// 在交易內與交易外共用
func (m *Marketplace) setBidStatus(tx *gorm.DB, listingID, bidID uuid.UUID, status models.BidStatus) error {
	const op = "SetBidStatus"
	if status != models.BidAccepted && status != models.BidRejected {
		return validationErr("bid status can only move to accepted or rejected, got %q", status)
	}
	result := tx.Model(&models.Bid{}).
		Where("id = ? AND listing_id = ? AND status = ?", bidID, listingID, models.BidPending).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("[%s] Fail to update bid status, err=%w", op, result.Error)
	}
	if result.RowsAffected == 0 {
		// 區分報價不存在和報價已定案兩種情況
		var count int64
		if err := tx.Model(&models.Bid{}).Where("id = ? AND listing_id = ?", bidID, listingID).Count(&count).Error; err != nil {
			return fmt.Errorf("[%s] Fail to check bid existence, err=%w", op, err)
		}
		if count == 0 {
			return ErrBidNotFound
		}
		return ErrBidResolved
	}
	return nil
}

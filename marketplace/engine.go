package marketplace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"wayx/models"
)

// 結標流程的狀態機：
//
//	需求單: open → in-progress → closed
//	報價:   pending → accepted 或 pending → rejected
//
// 所有轉移都是單向的。每個操作都在單一交易內完成，
// 前置條件用 rows-affected 條件更新驗證，任何一步失敗都會整筆回滾。

// AcceptBid 貨主接受單一報價，需求單進入 in-progress
// 若同一需求單上已有其他報價被接受，直接拒絕本次操作，
// 貨主必須先結案或另外處理，不允許無聲地產生兩個 accepted 報價
func (m *Marketplace) AcceptBid(ctx context.Context, actorID, listingID, bidID uuid.UUID) error {
	const op = "AcceptBid"
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listing, err := m.ownedListing(tx, actorID, listingID)
		if err != nil {
			return err
		}
		if listing.Status == models.ListingClosed {
			return ErrListingClosed
		}

		// 檢查是否已有其他報價被接受
		var accepted int64
		if err := tx.Model(&models.Bid{}).
			Where("listing_id = ? AND status = ? AND id <> ?", listingID, models.BidAccepted, bidID).
			Count(&accepted).Error; err != nil {
			return fmt.Errorf("[%s] Fail to count accepted bids, err=%w", op, err)
		}
		if accepted > 0 {
			return ErrAlreadyAccepted
		}

		var bid models.Bid
		if result := tx.Where("id = ? AND listing_id = ?", bidID, listingID).First(&bid); result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrBidNotFound
			}
			return fmt.Errorf("[%s] Fail to find bid, err=%w", op, result.Error)
		}
		if err := m.setBidStatus(tx, listingID, bidID, models.BidAccepted); err != nil {
			return err
		}

		// 需求單轉為 in-progress，closed 是終態不可離開
		result := tx.Model(&models.Listing{}).
			Where("id = ? AND status <> ?", listingID, models.ListingClosed).
			Update("status", models.ListingInProgress)
		if result.Error != nil {
			return fmt.Errorf("[%s] Fail to update listing status, err=%w", op, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyResolved
		}

		return m.notifyTx(tx, bid.BidderID, NotificationInput{
			Title:   "Bid accepted",
			Message: fmt.Sprintf("Your bid of %d %s on %q was accepted", bid.Amount, listing.Currency, listing.Title),
			Type:    models.NotificationSuccess,
			Link:    "/listings/" + listingID.String(),
		})
	})
}

// RejectOtherBids 把需求單下所有仍在 pending 的報價改為 rejected
// 已接受的報價不受影響，重複呼叫結果相同
func (m *Marketplace) RejectOtherBids(ctx context.Context, actorID, listingID uuid.UUID) error {
	const op = "RejectOtherBids"
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listing, err := m.ownedListing(tx, actorID, listingID)
		if err != nil {
			return err
		}
		return m.rejectPendingBids(tx, listing)
	})
}

// CloseListing 貨主結案需求單
// 為了維持「結案後不得有 pending 報價」的不變量，會先在同一交易內
// 拒絕所有剩餘的 pending 報價，而不是信任呼叫端的呼叫順序
func (m *Marketplace) CloseListing(ctx context.Context, actorID, listingID uuid.UUID) error {
	const op = "CloseListing"
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listing, err := m.ownedListing(tx, actorID, listingID)
		if err != nil {
			return err
		}
		if listing.Status == models.ListingClosed {
			return ErrListingClosed
		}
		if err := m.rejectPendingBids(tx, listing); err != nil {
			return err
		}
		result := tx.Model(&models.Listing{}).
			Where("id = ? AND status <> ?", listingID, models.ListingClosed).
			Update("status", models.ListingClosed)
		if result.Error != nil {
			return fmt.Errorf("[%s] Fail to close listing, err=%w", op, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyResolved
		}
		return nil
	})
}

// FinalizeAuction 一次完成整個結標流程：
// 接受得標報價、拒絕其餘報價、結案需求單並建立成交紀錄
// 整個流程在單一交易內完成，任何前置條件不成立都會整筆回滾
func (m *Marketplace) FinalizeAuction(ctx context.Context, actorID, listingID, winningBidID uuid.UUID) (*models.Deal, error) {
	const op = "FinalizeAuction"
	var deal *models.Deal
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listing, err := m.ownedListing(tx, actorID, listingID)
		if err != nil {
			return err
		}
		if listing.Status == models.ListingClosed {
			return ErrListingClosed
		}

		var winner models.Bid
		if result := tx.Where("id = ? AND listing_id = ?", winningBidID, listingID).First(&winner); result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrBidNotFound
			}
			return fmt.Errorf("[%s] Fail to find winning bid, err=%w", op, result.Error)
		}

		// 其他報價若已被接受過，不能再改選別的得標者
		var accepted int64
		if err := tx.Model(&models.Bid{}).
			Where("listing_id = ? AND status = ? AND id <> ?", listingID, models.BidAccepted, winningBidID).
			Count(&accepted).Error; err != nil {
			return fmt.Errorf("[%s] Fail to count accepted bids, err=%w", op, err)
		}
		if accepted > 0 {
			return ErrAlreadyAccepted
		}

		// 得標報價允許從 pending 或先前 AcceptBid 留下的 accepted 繼續
		if winner.Status == models.BidPending {
			if err := m.setBidStatus(tx, listingID, winningBidID, models.BidAccepted); err != nil {
				return err
			}
		} else if winner.Status != models.BidAccepted {
			return ErrBidResolved
		}

		if err := m.rejectPendingBids(tx, listing); err != nil {
			return err
		}

		result := tx.Model(&models.Listing{}).
			Where("id = ? AND status <> ?", listingID, models.ListingClosed).
			Update("status", models.ListingClosed)
		if result.Error != nil {
			return fmt.Errorf("[%s] Fail to close listing, err=%w", op, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyResolved
		}

		record := models.Deal{
			ListingID:    listingID,
			BidID:        winner.ID,
			ClientID:     listing.OwnerID,
			SupplierID:   winner.BidderID,
			AgreedAmount: winner.Amount,
			Currency:     listing.Currency,
			Status:       models.DealNew,
		}
		if result := tx.Create(&record); result.Error != nil {
			return fmt.Errorf("[%s] Fail to create deal, err=%w", op, result.Error)
		}
		deal = &record

		return m.notifyTx(tx, winner.BidderID, NotificationInput{
			Title:   "Bid accepted",
			Message: fmt.Sprintf("Your bid of %d %s on %q was accepted and the deal is created", winner.Amount, listing.Currency, listing.Title),
			Type:    models.NotificationSuccess,
			Link:    "/deals/" + record.ID.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	m.logger.Info("Auction finalized",
		slog.String("listingID", listingID.String()),
		slog.String("winningBidID", winningBidID.String()),
		slog.String("dealID", deal.ID.String()))
	return deal, nil
}

// ownedListing 鎖定並讀取需求單，驗證操作者是貨主本人
// 列鎖讓同一需求單的併發結標操作排隊，後到者會看到先到者提交後的狀態
func (m *Marketplace) ownedListing(tx *gorm.DB, actorID, listingID uuid.UUID) (*models.Listing, error) {
	const op = "ownedListing"
	listing := models.Listing{ID: listingID}
	if result := lockListingRow(tx).First(&listing); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("[%s] Fail to find listing, err=%w", op, result.Error)
	}
	if listing.OwnerID != actorID {
		return nil, ErrUnauthorized
	}
	return &listing, nil
}

// rejectPendingBids 拒絕需求單下所有 pending 報價並通知報價者
func (m *Marketplace) rejectPendingBids(tx *gorm.DB, listing *models.Listing) error {
	const op = "rejectPendingBids"
	var pending []models.Bid
	if result := tx.Where("listing_id = ? AND status = ?", listing.ID, models.BidPending).Find(&pending); result.Error != nil {
		return fmt.Errorf("[%s] Fail to list pending bids, err=%w", op, result.Error)
	}
	if len(pending) == 0 {
		return nil
	}
	result := tx.Model(&models.Bid{}).
		Where("listing_id = ? AND status = ?", listing.ID, models.BidPending).
		Update("status", models.BidRejected)
	if result.Error != nil {
		return fmt.Errorf("[%s] Fail to reject bids, err=%w", op, result.Error)
	}
	for _, bid := range pending {
		if err := m.notifyTx(tx, bid.BidderID, NotificationInput{
			Title:   "Bid rejected",
			Message: fmt.Sprintf("Your bid of %d %s on %q was not selected", bid.Amount, listing.Currency, listing.Title),
			Type:    models.NotificationInfo,
			Link:    "/listings/" + listing.ID.String(),
		}); err != nil {
			return err
		}
	}
	return nil
}

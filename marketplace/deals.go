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

// CreateDeal 以已接受的報價建立成交紀錄
// 會先驗證報價確實屬於該需求單且狀態為 accepted，避免產生沒有依據的成交紀錄
// 成交紀錄建立後不再修改
func (m *Marketplace) CreateDeal(ctx context.Context, listingID, bidID uuid.UUID) (*models.Deal, error) {
	const op = "CreateDeal"
	var deal *models.Deal
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listing := models.Listing{ID: listingID}
		if result := tx.First(&listing); result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrListingNotFound
			}
			return fmt.Errorf("[%s] Fail to find listing, err=%w", op, result.Error)
		}
		var bid models.Bid
		if result := tx.Where("id = ? AND listing_id = ?", bidID, listingID).First(&bid); result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrBidNotFound
			}
			return fmt.Errorf("[%s] Fail to find bid, err=%w", op, result.Error)
		}
		if bid.Status != models.BidAccepted {
			return ErrBidNotAccepted
		}
		record := models.Deal{
			ListingID:    listingID,
			BidID:        bid.ID,
			ClientID:     listing.OwnerID,
			SupplierID:   bid.BidderID,
			AgreedAmount: bid.Amount,
			Currency:     listing.Currency,
			Status:       models.DealNew,
		}
		if result := tx.Create(&record); result.Error != nil {
			return fmt.Errorf("[%s] Fail to create deal, err=%w", op, result.Error)
		}
		deal = &record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deal, nil
}

// GetDeal 以 ID 查詢成交紀錄，查無資料時回傳 ErrDealNotFound
func (m *Marketplace) GetDeal(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	const op = "GetDeal"
	deal := models.Deal{ID: id}
	if result := m.db.WithContext(ctx).First(&deal); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrDealNotFound
		}
		return nil, fmt.Errorf("[%s] Fail to find deal, err=%w", op, result.Error)
	}
	return &deal, nil
}

// DealFilter 描述成交紀錄列表的查詢條件
type DealFilter struct {
	// ParticipantID 過濾出此使用者以貨主或供應商身份參與的成交紀錄
	ParticipantID *uuid.UUID
	Limit         int
}

// ListDeals 依建立時間新到舊列出成交紀錄
func (m *Marketplace) ListDeals(ctx context.Context, filter DealFilter) ([]models.Deal, error) {
	const op = "ListDeals"
	query := m.db.WithContext(ctx).Model(&models.Deal{})
	if filter.ParticipantID != nil {
		query = query.Where("client_id = ? OR supplier_id = ?", *filter.ParticipantID, *filter.ParticipantID)
	}
	query = query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
		Limit(m.limit(filter.Limit))

	var deals []models.Deal
	if result := query.Find(&deals); result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to list deals, err=%w", op, result.Error)
	}
	return deals, nil
}

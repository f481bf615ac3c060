package marketplace

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wayx/models"
)

// 平台支援的貨運方式與計價幣別
var (
	transportModes = map[models.TransportMode]struct{}{
		models.TransportRoad:       {},
		models.TransportRail:       {},
		models.TransportAir:        {},
		models.TransportSea:        {},
		models.TransportMultimodal: {},
	}
	currencies = map[string]struct{}{
		"KZT": {},
		"USD": {},
		"EUR": {},
		"RUB": {},
	}
)

// CreateListingInput 包含建立需求單所需的所有欄位
type CreateListingInput struct {
	OwnerID     uuid.UUID
	Title       string
	Description string
	Origin      string
	Destination string
	Price       int64
	Currency    string
	Transport   models.TransportMode
}

func (in CreateListingInput) validate() error {
	if in.OwnerID == uuid.Nil {
		return validationErr("owner id is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return validationErr("title is required")
	}
	if strings.TrimSpace(in.Origin) == "" || strings.TrimSpace(in.Destination) == "" {
		return validationErr("origin and destination are required")
	}
	if in.Price <= 0 {
		return validationErr("price must be positive, got %d", in.Price)
	}
	if _, ok := currencies[in.Currency]; !ok {
		return validationErr("unsupported currency %q", in.Currency)
	}
	if _, ok := transportModes[in.Transport]; !ok {
		return validationErr("unsupported transport mode %q", in.Transport)
	}
	return nil
}

// CreateListing 建立新的貨運需求單
// 不論呼叫端傳入什麼，狀態一律從 open 開始，建立時間由伺服器決定
func (m *Marketplace) CreateListing(ctx context.Context, input CreateListingInput) (*models.Listing, error) {
	const op = "CreateListing"
	if err := input.validate(); err != nil {
		return nil, err
	}
	listing := models.Listing{
		OwnerID:     input.OwnerID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Origin:      strings.TrimSpace(input.Origin),
		Destination: strings.TrimSpace(input.Destination),
		Price:       input.Price,
		Currency:    input.Currency,
		Transport:   input.Transport,
		Status:      models.ListingOpen,
	}
	if result := m.db.WithContext(ctx).Create(&listing); result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to create listing, err=%w", op, result.Error)
	}
	return &listing, nil
}

// GetListing 以 ID 查詢需求單，查無資料時回傳 ErrListingNotFound
func (m *Marketplace) GetListing(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	const op = "GetListing"
	listing := models.Listing{ID: id}
	if result := m.db.WithContext(ctx).First(&listing); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("[%s] Fail to find listing, err=%w", op, result.Error)
	}
	return &listing, nil
}

// ListingFilter 描述需求單列表的查詢條件
type ListingFilter struct {
	Status  *models.ListingStatus
	OwnerID *uuid.UUID
	Limit   int
}

// ListListings 依建立時間新到舊列出需求單，可選擇性過濾狀態與貨主
func (m *Marketplace) ListListings(ctx context.Context, filter ListingFilter) ([]models.Listing, error) {
	const op = "ListListings"
	query := m.db.WithContext(ctx).Model(&models.Listing{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	query = query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
		Limit(m.limit(filter.Limit))

	var listings []models.Listing
	if result := query.Find(&listings); result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to list listings, err=%w", op, result.Error)
	}
	return listings, nil
}

// ListingPatch 描述需求單允許被貨主修改的欄位
// 狀態欄位不在此列，狀態只能由結標流程變更
type ListingPatch struct {
	Title       *string
	Description *string
	Origin      *string
	Destination *string
	Price       *int64
	Currency    *string
	Transport   *models.TransportMode
}

// UpdateListing 由貨主修改需求單欄位
// 已結案的需求單不可修改
func (m *Marketplace) UpdateListing(ctx context.Context, actorID, id uuid.UUID, patch ListingPatch) (*models.Listing, error) {
	const op = "UpdateListing"
	var updated *models.Listing
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listing := models.Listing{ID: id}
		if result := tx.First(&listing); result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrListingNotFound
			}
			return fmt.Errorf("[%s] Fail to find listing, err=%w", op, result.Error)
		}
		if listing.OwnerID != actorID {
			return ErrUnauthorized
		}
		if listing.Status == models.ListingClosed {
			return ErrListingClosed
		}

		fields := map[string]any{}
		if patch.Title != nil {
			if strings.TrimSpace(*patch.Title) == "" {
				return validationErr("title is required")
			}
			fields["title"] = strings.TrimSpace(*patch.Title)
		}
		if patch.Description != nil {
			fields["description"] = *patch.Description
		}
		if patch.Origin != nil {
			fields["origin"] = strings.TrimSpace(*patch.Origin)
		}
		if patch.Destination != nil {
			fields["destination"] = strings.TrimSpace(*patch.Destination)
		}
		if patch.Price != nil {
			if *patch.Price <= 0 {
				return validationErr("price must be positive, got %d", *patch.Price)
			}
			fields["price"] = *patch.Price
		}
		if patch.Currency != nil {
			if _, ok := currencies[*patch.Currency]; !ok {
				return validationErr("unsupported currency %q", *patch.Currency)
			}
			fields["currency"] = *patch.Currency
		}
		if patch.Transport != nil {
			if _, ok := transportModes[*patch.Transport]; !ok {
				return validationErr("unsupported transport mode %q", *patch.Transport)
			}
			fields["transport"] = *patch.Transport
		}
		if len(fields) > 0 {
			if result := tx.Model(&listing).Updates(fields); result.Error != nil {
				return fmt.Errorf("[%s] Fail to update listing, err=%w", op, result.Error)
			}
		}
		updated = &listing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

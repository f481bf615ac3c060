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

// EnsureThread 取得貨主與供應商針對需求單的對話串，不存在時建立新的
// 只有需求單貨主或供應商本人可以開啟對話串，重複呼叫回傳同一條
func (m *Marketplace) EnsureThread(ctx context.Context, actorID, listingID, supplierID uuid.UUID) (*models.ChatThread, error) {
	const op = "EnsureThread"
	if supplierID == uuid.Nil {
		return nil, validationErr("supplier id is required")
	}
	var thread *models.ChatThread
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listing := models.Listing{ID: listingID}
		if result := tx.First(&listing); result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrListingNotFound
			}
			return fmt.Errorf("[%s] Fail to find listing, err=%w", op, result.Error)
		}
		if listing.OwnerID == supplierID {
			return validationErr("supplier cannot be the listing owner")
		}
		if actorID != listing.OwnerID && actorID != supplierID {
			return ErrUnauthorized
		}
		record := models.ChatThread{
			ListingID:  listingID,
			ClientID:   listing.OwnerID,
			SupplierID: supplierID,
		}
		if result := tx.
			Where("listing_id = ? AND supplier_id = ?", listingID, supplierID).
			FirstOrCreate(&record); result.Error != nil {
			return fmt.Errorf("[%s] Fail to ensure thread, err=%w", op, result.Error)
		}
		thread = &record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return thread, nil
}

// ListThreads 列出使用者參與的所有對話串，新的在前
func (m *Marketplace) ListThreads(ctx context.Context, userID uuid.UUID) ([]models.ChatThread, error) {
	const op = "ListThreads"
	var threads []models.ChatThread
	result := m.db.WithContext(ctx).
		Where("client_id = ? OR supplier_id = ?", userID, userID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
		Limit(m.options.listLimit).
		Find(&threads)
	if result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to list threads, err=%w", op, result.Error)
	}
	return threads, nil
}

// SendMessage 在對話串中發送訊息，只有對話雙方可以發言
func (m *Marketplace) SendMessage(ctx context.Context, actorID, threadID uuid.UUID, body string) (*models.ChatMessage, error) {
	const op = "SendMessage"
	if strings.TrimSpace(body) == "" {
		return nil, validationErr("message body is required")
	}
	thread, err := m.memberThread(ctx, actorID, threadID)
	if err != nil {
		return nil, err
	}
	record := models.ChatMessage{
		ThreadID: thread.ID,
		AuthorID: actorID,
		Body:     body,
	}
	if result := m.db.WithContext(ctx).Create(&record); result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to create message, err=%w", op, result.Error)
	}
	return &record, nil
}

// ListMessages 依建立時間舊到新列出對話串中的訊息
func (m *Marketplace) ListMessages(ctx context.Context, actorID, threadID uuid.UUID) ([]models.ChatMessage, error) {
	const op = "ListMessages"
	if _, err := m.memberThread(ctx, actorID, threadID); err != nil {
		return nil, err
	}
	var messages []models.ChatMessage
	result := m.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}}).
		Limit(m.options.listLimit).
		Find(&messages)
	if result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to list messages, err=%w", op, result.Error)
	}
	return messages, nil
}

// memberThread 讀取對話串並驗證操作者是對話雙方之一
func (m *Marketplace) memberThread(ctx context.Context, actorID, threadID uuid.UUID) (*models.ChatThread, error) {
	const op = "memberThread"
	thread := models.ChatThread{ID: threadID}
	if result := m.db.WithContext(ctx).First(&thread); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, fmt.Errorf("[%s] Fail to find thread, err=%w", op, result.Error)
	}
	if thread.ClientID != actorID && thread.SupplierID != actorID {
		return nil, ErrUnauthorized
	}
	return &thread, nil
}

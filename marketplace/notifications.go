package marketplace

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wayx/models"
)

// NotificationInput 包含建立通知所需的欄位
type NotificationInput struct {
	Title   string
	Message string
	Type    models.NotificationType
	Link    string
}

// Notify 建立一則給指定使用者的通知，read 一律從 false 開始
func (m *Marketplace) Notify(ctx context.Context, userID uuid.UUID, input NotificationInput) (*models.Notification, error) {
	const op = "Notify"
	if userID == uuid.Nil {
		return nil, validationErr("user id is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, validationErr("notification title is required")
	}
	record := models.Notification{
		UserID:  userID,
		Title:   input.Title,
		Message: input.Message,
		Type:    input.Type,
		Link:    input.Link,
		Read:    false,
	}
	if record.Type == "" {
		record.Type = models.NotificationInfo
	}
	if result := m.db.WithContext(ctx).Create(&record); result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to create notification, err=%w", op, result.Error)
	}
	return &record, nil
}

// notifyTx 在既有交易內建立通知，結標流程用它讓通知跟狀態變更一起提交
func (m *Marketplace) notifyTx(tx *gorm.DB, userID uuid.UUID, input NotificationInput) error {
	const op = "notifyTx"
	record := models.Notification{
		UserID:  userID,
		Title:   input.Title,
		Message: input.Message,
		Type:    input.Type,
		Link:    input.Link,
		Read:    false,
	}
	if result := tx.Create(&record); result.Error != nil {
		return fmt.Errorf("[%s] Fail to create notification, err=%w", op, result.Error)
	}
	return nil
}

// ListNotifications 依建立時間新到舊列出使用者的通知
func (m *Marketplace) ListNotifications(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	const op = "ListNotifications"
	var notifications []models.Notification
	result := m.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
		Limit(m.options.listLimit).
		Find(&notifications)
	if result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to list notifications, err=%w", op, result.Error)
	}
	return notifications, nil
}

// MarkNotificationRead 把單一通知標為已讀，只能操作自己的通知
func (m *Marketplace) MarkNotificationRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	const op = "MarkNotificationRead"
	result := m.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if result.Error != nil {
		return fmt.Errorf("[%s] Fail to update notification, err=%w", op, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllNotificationsRead 把使用者的所有未讀通知標為已讀
func (m *Marketplace) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) error {
	const op = "MarkAllNotificationsRead"
	result := m.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	if result.Error != nil {
		return fmt.Errorf("[%s] Fail to update notifications, err=%w", op, result.Error)
	}
	return nil
}

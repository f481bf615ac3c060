package marketplace

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"wayx/models"
)

// SSOIdentity 代表外部 SSO 提供者驗證成功後回傳的身份資訊
type SSOIdentity struct {
	Provider string
	Subject  string
	Name     string
	Email    string
}

// FindOrCreateUser 以 SSO 身份對應平台使用者
// 第一次登入的使用者會自動建立，預設角色為 client
func (m *Marketplace) FindOrCreateUser(ctx context.Context, identity SSOIdentity) (*models.User, error) {
	const op = "FindOrCreateUser"
	if identity.Provider == "" || identity.Subject == "" {
		return nil, validationErr("sso provider and subject are required")
	}
	var user *models.User
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := models.UserIdentity{Provider: identity.Provider, Identity: identity.Subject}
		result := tx.Preload("User").Where(&record).First(&record)
		if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return fmt.Errorf("[%s] Fail to find user identity, err=%w", op, result.Error)
		}
		if result.Error == nil {
			user = record.User
			return nil
		}

		username := strings.TrimSpace(identity.Name)
		if username == "" {
			username = identity.Subject
		}
		record.User = &models.User{
			Username: username,
			Email:    identity.Email,
			Role:     models.RoleClient,
		}
		if result := tx.Create(&record); result.Error != nil {
			return fmt.Errorf("[%s] Fail to create user identity, err=%w", op, result.Error)
		}
		user = record.User
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser 以 ID 查詢使用者，查無資料時回傳 ErrUserNotFound
func (m *Marketplace) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "GetUser"
	user := models.User{ID: id}
	if result := m.db.WithContext(ctx).First(&user); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("[%s] Fail to find user, err=%w", op, result.Error)
	}
	return &user, nil
}

// SetUserRole 由管理員調整使用者角色
func (m *Marketplace) SetUserRole(ctx context.Context, actorID, userID uuid.UUID, role models.UserRole) error {
	const op = "SetUserRole"
	switch role {
	case models.RoleAdmin, models.RoleClient, models.RoleSupplier:
	default:
		return validationErr("unsupported role %q", role)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor := models.User{ID: actorID}
		if result := tx.First(&actor); result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrUnauthorized
			}
			return fmt.Errorf("[%s] Fail to find acting user, err=%w", op, result.Error)
		}
		if actor.Role != models.RoleAdmin {
			return ErrUnauthorized
		}
		result := tx.Model(&models.User{}).Where("id = ?", userID).Update("role", role)
		if result.Error != nil {
			return fmt.Errorf("[%s] Fail to update user role, err=%w", op, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

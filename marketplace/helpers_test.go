package marketplace_test

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"wayx/marketplace"
	"wayx/models"
)

func init() {
	// 將日誌輸出重定向到io.Discard
	log.SetOutput(io.Discard)
}

// setupTest 建立一個獨立的 in-memory SQLite 資料庫與 Marketplace 實例
func setupTest(t *testing.T) (*marketplace.Marketplace, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.UserIdentity{},
		&models.Listing{},
		&models.Bid{},
		&models.Deal{},
		&models.Notification{},
		&models.ChatThread{},
		&models.ChatMessage{},
	))

	m, err := marketplace.New(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		require.NoError(t, err)
		sqlDB.Close()
	})
	return m, db
}

func createUser(t *testing.T, db *gorm.DB, username string, role models.UserRole) *models.User {
	t.Helper()
	user := models.User{Username: username, Role: role}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createListing(t *testing.T, m *marketplace.Marketplace, ownerID uuid.UUID) *models.Listing {
	t.Helper()
	listing, err := m.CreateListing(context.Background(), marketplace.CreateListingInput{
		OwnerID:     ownerID,
		Title:       "Almaty to Astana cargo",
		Description: "20t of packaged goods",
		Origin:      "Almaty",
		Destination: "Astana",
		Price:       5000,
		Currency:    "KZT",
		Transport:   models.TransportRoad,
	})
	require.NoError(t, err)
	return listing
}

func placeBid(t *testing.T, m *marketplace.Marketplace, bidderID, listingID uuid.UUID, amount int64) *models.Bid {
	t.Helper()
	bid, err := m.PlaceBid(context.Background(), bidderID, listingID, amount, "")
	require.NoError(t, err)
	// 確保 created_at 排序穩定
	time.Sleep(5 * time.Millisecond)
	return bid
}

func reloadBid(t *testing.T, db *gorm.DB, id uuid.UUID) *models.Bid {
	t.Helper()
	bid := models.Bid{ID: id}
	require.NoError(t, db.First(&bid).Error)
	return &bid
}

func reloadListing(t *testing.T, db *gorm.DB, id uuid.UUID) *models.Listing {
	t.Helper()
	listing := models.Listing{ID: id}
	require.NoError(t, db.First(&listing).Error)
	return &listing
}

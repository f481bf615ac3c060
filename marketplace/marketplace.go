package marketplace

import (
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultListLimit = 200

type marketplaceOptions struct {
	logger    *slog.Logger
	listLimit int
	now       func() time.Time
}

type Option func(*marketplaceOptions)

// WithLogger 設置日誌記錄器
func WithLogger(logger *slog.Logger) Option {
	return func(o *marketplaceOptions) {
		o.logger = logger
	}
}

// WithListLimit 設置列表查詢的單次回傳上限
func WithListLimit(limit int) Option {
	return func(o *marketplaceOptions) {
		o.listLimit = limit
	}
}

// WithNow 注入時間來源 (主要用於測試)
func WithNow(now func() time.Time) Option {
	return func(o *marketplaceOptions) {
		o.now = now
	}
}

// Marketplace 封裝貨運媒合平台的核心流程：
// 需求單的建立與查詢、供應商報價、貨主結標以及成交紀錄的產生。
// 所有跨文件的狀態變更都包在同一個資料庫交易內完成。
type Marketplace struct {
	db      *gorm.DB
	logger  *slog.Logger
	options marketplaceOptions
}

func New(db *gorm.DB, opts ...Option) (*Marketplace, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	// 默認選項
	options := marketplaceOptions{
		logger:    slog.Default(),
		listLimit: defaultListLimit,
		now:       time.Now,
	}

	// 應用自定義選項
	for _, opt := range opts {
		opt(&options)
	}

	return &Marketplace{
		db:      db,
		logger:  options.logger.With(slog.String("caller", "Marketplace")),
		options: options,
	}, nil
}

// limit 將呼叫端要求的筆數收斂到設定的上限內
func (m *Marketplace) limit(requested int) int {
	if requested <= 0 || requested > m.options.listLimit {
		return m.options.listLimit
	}
	return requested
}

// lockListingRow 在交易內讀取需求單時加上 FOR UPDATE 列鎖，
// 讓同一張需求單的報價與結標操作依序執行。
// SQLite 不支援 FOR UPDATE，其單一寫入者模式本身已提供序列化。
func lockListingRow(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

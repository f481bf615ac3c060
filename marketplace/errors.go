package marketplace

import (
	"errors"
	"fmt"
)

// 錯誤分類，呼叫端可以用 errors.Is 檢查類別或具體原因
var (
	// ErrValidation 代表輸入資料不合法，重試相同輸入不會成功
	ErrValidation = errors.New("invalid input")
	// ErrInvalidState 代表目標處於不允許此操作的狀態
	ErrInvalidState = errors.New("invalid state")
	// ErrUnauthorized 代表操作者沒有權限執行此操作
	ErrUnauthorized = errors.New("operation not permitted for this user")

	ErrListingNotFound      = errors.New("listing not found")
	ErrBidNotFound          = errors.New("bid not found")
	ErrDealNotFound         = errors.New("deal not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrThreadNotFound       = errors.New("chat thread not found")

	// ErrListingClosed 代表需求單已結案，不再接受出價或狀態變更
	ErrListingClosed = fmt.Errorf("listing is closed: %w", ErrInvalidState)
	// ErrBidResolved 代表報價已經被接受或拒絕，不能再變更
	ErrBidResolved = fmt.Errorf("bid is no longer pending: %w", ErrInvalidState)
	// ErrAlreadyAccepted 代表同一需求單上已有其他報價被接受
	ErrAlreadyAccepted = fmt.Errorf("another bid is already accepted: %w", ErrInvalidState)
	// ErrAlreadyResolved 代表需求單已經被其他操作結標
	ErrAlreadyResolved = fmt.Errorf("auction is already resolved: %w", ErrInvalidState)
	// ErrBidNotAccepted 代表報價尚未被接受，不能建立成交紀錄
	ErrBidNotAccepted = fmt.Errorf("bid is not accepted: %w", ErrInvalidState)
)

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

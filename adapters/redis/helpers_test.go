package redis

import (
	"io"
	"log"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func init() {
	// 將日誌輸出重定向到io.Discard
	log.SetOutput(io.Discard)
}

func newMockedClient(t *testing.T) (*redis.Client, redismock.ClientMock, func()) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	return db, mock, func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	}
}

// 測試用的出價事件
type bidEvent struct {
	ListingID string `msgpack:"listingId"`
	Bidder    string `msgpack:"bidder"`
	Amount    int64  `msgpack:"amount"`
}

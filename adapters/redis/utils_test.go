package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// 帶時間字段的報價事件
type quoteEvent struct {
	Carrier   string    `msgpack:"carrier"`
	Amount    int64     `msgpack:"amount"`
	Accepted  bool      `msgpack:"accepted"`
	PlacedAt  time.Time `msgpack:"placedAt"`
}

// 無標籤結構
type plainPayload struct {
	Carrier string
	Amount  int64
}

// 空結構
type emptyPayload struct{}

// 巢狀的需求單快照
type listingSnapshot struct {
	Revision int64          `msgpack:"revision"`
	Winning  quoteEvent     `msgpack:"winning"`
	Routes   []string       `msgpack:"routes"`
	Extra    map[string]any `msgpack:"extra"`
	Note     any            `msgpack:"note"`
}

// compareTime 比較兩個時間是否相等，忽略單調時鐘和位置信息
func compareTime(t1, t2 time.Time) bool {
	return t1.UTC().Equal(t2.UTC())
}

// compareQuoteEvent 比較兩個quoteEvent，特別處理時間比較
func compareQuoteEvent(t *testing.T, expected, actual quoteEvent) {
	assert.Equal(t, expected.Carrier, actual.Carrier)
	assert.Equal(t, expected.Amount, actual.Amount)
	assert.Equal(t, expected.Accepted, actual.Accepted)
	assert.True(t, compareTime(expected.PlacedAt, actual.PlacedAt),
		"time mismatch: expected %v, got %v", expected.PlacedAt, actual.PlacedAt)
}

// compareListingSnapshot 比較兩個listingSnapshot，特別處理嵌套結構和map
func compareListingSnapshot(t *testing.T, expected, actual listingSnapshot) {
	assert.Equal(t, expected.Revision, actual.Revision)
	compareQuoteEvent(t, expected.Winning, actual.Winning)
	assert.Equal(t, expected.Routes, actual.Routes)
	assert.Equal(t, expected.Note, actual.Note)

	// 比較 map
	assert.Equal(t, len(expected.Extra), len(actual.Extra))
	for k, v := range expected.Extra {
		actualVal, ok := actual.Extra[k]
		assert.True(t, ok, "key %s not found in actual map", k)
		assert.EqualValues(t, v, actualVal, "value mismatch for key %s", k)
	}
}

func TestDefaultParseToMessage(t *testing.T) {
	t.Run("normal struct", func(t *testing.T) {
		input := quoteEvent{
			Carrier:  "acme-logistics",
			Amount:   2500,
			Accepted: true,
			PlacedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		}

		result, err := DefaultParseToMessage(input)
		assert.NoError(t, err)
		assert.NotNil(t, result)
		assert.Contains(t, result, "data")
		assert.NotEmpty(t, result["data"])
	})

	t.Run("empty struct", func(t *testing.T) {
		input := emptyPayload{}

		result, err := DefaultParseToMessage(input)
		assert.NoError(t, err)
		assert.NotNil(t, result)
		assert.Contains(t, result, "data")
		assert.NotEmpty(t, result["data"])
	})

	t.Run("struct with no tags", func(t *testing.T) {
		input := plainPayload{
			Carrier: "acme-logistics",
			Amount:  2500,
		}

		result, err := DefaultParseToMessage(input)
		assert.NoError(t, err)
		assert.NotNil(t, result)
		assert.Contains(t, result, "data")
		assert.NotEmpty(t, result["data"])
	})

	t.Run("nested struct", func(t *testing.T) {
		input := listingSnapshot{
			Revision: 1,
			Winning: quoteEvent{
				Carrier:  "swift-cargo",
				Amount:   2300,
				Accepted: true,
				PlacedAt: time.Now(),
			},
			Routes: []string{"TPE", "KHH"},
			Extra: map[string]any{
				"cargoType": "pallet",
				"weightKg":  480,
			},
			Note: "fragile",
		}

		result, err := DefaultParseToMessage(input)
		assert.NoError(t, err)
		assert.NotNil(t, result)
		assert.Contains(t, result, "data")
		assert.NotEmpty(t, result["data"])
	})

	t.Run("pointer type error", func(t *testing.T) {
		input := &quoteEvent{
			Carrier: "acme-logistics",
		}

		_, err := DefaultParseToMessage(input)
		assert.ErrorIs(t, err, ErrPointerType)
	})

	t.Run("nil pointer struct", func(t *testing.T) {
		var input *quoteEvent

		_, err := DefaultParseToMessage(input)
		assert.ErrorIs(t, err, ErrPointerType)
	})

	t.Run("zero values", func(t *testing.T) {
		input := quoteEvent{} // 全部為零值

		message, err := DefaultParseToMessage(input)
		assert.NoError(t, err)

		result, err := DefaultParseFromMessage[quoteEvent](message)
		assert.NoError(t, err)
		compareQuoteEvent(t, input, result)
	})
}

func TestDefaultParseFromMessage(t *testing.T) {
	t.Run("normal struct", func(t *testing.T) {
		input := quoteEvent{
			Carrier:  "acme-logistics",
			Amount:   2500,
			Accepted: true,
			PlacedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		}

		// 先轉換為message
		message, err := DefaultParseToMessage(input)
		assert.NoError(t, err)

		// 再轉換回struct
		result, err := DefaultParseFromMessage[quoteEvent](message)
		assert.NoError(t, err)
		compareQuoteEvent(t, input, result)
	})

	t.Run("empty struct", func(t *testing.T) {
		input := emptyPayload{}

		message, err := DefaultParseToMessage(input)
		assert.NoError(t, err)

		result, err := DefaultParseFromMessage[emptyPayload](message)
		assert.NoError(t, err)
		assert.Equal(t, input, result)
	})

	t.Run("nested struct", func(t *testing.T) {
		input := listingSnapshot{
			Revision: 1,
			Winning: quoteEvent{
				Carrier:  "swift-cargo",
				Amount:   2300,
				Accepted: true,
				PlacedAt: time.Now().UTC(), // 使用UTC時間避免時區問題
			},
			Routes: []string{"TPE", "KHH"},
			Extra: map[string]any{
				"cargoType": "pallet",
				"weightKg":  480,
			},
			Note: "fragile",
		}

		message, err := DefaultParseToMessage(input)
		assert.NoError(t, err)

		result, err := DefaultParseFromMessage[listingSnapshot](message)
		assert.NoError(t, err)
		compareListingSnapshot(t, input, result)
	})

	t.Run("empty map", func(t *testing.T) {
		input := map[string]any{}

		result, err := DefaultParseFromMessage[quoteEvent](input)
		assert.NoError(t, err)
		assert.Empty(t, result.Carrier)
		assert.Zero(t, result.Amount)
		assert.False(t, result.Accepted)
	})

	t.Run("nil map", func(t *testing.T) {
		var input map[string]any

		result, err := DefaultParseFromMessage[quoteEvent](input)
		assert.NoError(t, err)
		assert.Empty(t, result.Carrier)
		assert.Zero(t, result.Amount)
		assert.False(t, result.Accepted)
	})

	t.Run("pointer type error", func(t *testing.T) {
		input := map[string]any{"data": "some base64 data"}

		_, err := DefaultParseFromMessage[*quoteEvent](input)
		assert.ErrorIs(t, err, ErrPointerType)
	})

	t.Run("invalid base64", func(t *testing.T) {
		input := map[string]any{
			"data": "invalid base64",
		}

		_, err := DefaultParseFromMessage[quoteEvent](input)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "base64 decode error")
	})

	t.Run("missing data field", func(t *testing.T) {
		input := map[string]any{
			"wrong_field": "some data",
		}

		_, err := DefaultParseFromMessage[quoteEvent](input)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "data field not found")
	})

	t.Run("invalid data type", func(t *testing.T) {
		input := map[string]any{
			"data": 123, // 錯誤的類型
		}

		_, err := DefaultParseFromMessage[quoteEvent](input)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid type")
	})
}

package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestStore_Load(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(mock redismock.ClientMock)
		state    string
		expected map[string]string
		wantErr  bool
	}{
		{
			name: "success",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectHGetAll("test:state1").SetVal(map[string]string{
					"key1": "value1",
					"key2": "value2",
				})
			},
			state: "state1",
			expected: map[string]string{
				"key1": "value1",
				"key2": "value2",
			},
		},
		{
			name: "missing_key",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectHGetAll("test:empty").SetVal(map[string]string{})
			},
			state:    "empty",
			expected: map[string]string{},
		},
		{
			name: "redis_error",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectHGetAll("test:state1").
					SetErr(errors.New("redis connection error"))
			},
			state:    "state1",
			wantErr:  true,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 準備測試環境
			client, mock, cleanup := newMockedClient(t)
			defer cleanup()

			tt.setup(mock)

			store := NewStore(client, WithStorePrefix("test:"))

			// 執行測試
			got, err := store.Load(context.Background(), tt.state)

			// 驗證結果
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestStore_Save(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock redismock.ClientMock)
		state   string
		data    map[string]string
		wantErr bool
	}{
		{
			name: "success",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectEvalSha(
					saveScript.Hash(),
					[]string{"test:state1"},
					[]interface{}{int64(0), "key1", "value1"},
				).SetVal(1)
			},
			state: "state1",
			data: map[string]string{
				"key1": "value1",
			},
		},
		{
			name: "empty_data",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectEvalSha(
					saveScript.Hash(),
					[]string{"test:state1"},
					[]interface{}{int64(0)},
				).SetVal(1)
			},
			state: "state1",
			data:  map[string]string{},
		},
		{
			name: "nil_data",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectEvalSha(
					saveScript.Hash(),
					[]string{"test:state1"},
					[]interface{}{int64(0)},
				).SetVal(1)
			},
			state: "state1",
			data:  nil,
		},
		{
			name: "redis_error",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectEvalSha(
					saveScript.Hash(),
					[]string{"test:state1"},
					[]interface{}{int64(0), "key1", "value1"},
				).SetErr(redis.ErrClosed)
			},
			state: "state1",
			data: map[string]string{
				"key1": "value1",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 準備測試環境
			client, mock, cleanup := newMockedClient(t)
			defer cleanup()

			tt.setup(mock)

			store := NewStore(client, WithStorePrefix("test:"))

			// 執行測試
			err := store.Save(context.Background(), tt.state, tt.data)

			// 驗證結果
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestStore_SaveWithTTL(t *testing.T) {
	client, mock, cleanup := newMockedClient(t)
	defer cleanup()

	mock.ExpectEvalSha(
		saveScript.Hash(),
		[]string{"test:state1"},
		[]interface{}{int64(120), "key1", "value1"},
	).SetVal(1)

	store := NewStore(client, WithStorePrefix("test:"), WithStoreTTL(2*time.Minute))
	err := store.Save(context.Background(), "state1", map[string]string{"key1": "value1"})
	assert.NoError(t, err)
}

func TestStore_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		client, mock, cleanup := newMockedClient(t)
		defer cleanup()

		mock.ExpectDel("test:state1").SetVal(1)

		store := NewStore(client, WithStorePrefix("test:"))
		assert.NoError(t, store.Delete(context.Background(), "state1"))
	})

	t.Run("redis_error", func(t *testing.T) {
		client, mock, cleanup := newMockedClient(t)
		defer cleanup()

		mock.ExpectDel("test:state1").SetErr(redis.ErrClosed)

		store := NewStore(client, WithStorePrefix("test:"))
		assert.Error(t, store.Delete(context.Background(), "state1"))
	})
}

package redis

import (
	"encoding/base64"
	"fmt"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"
)

// 事件在stream entry中統一放在data字段，內容是msgpack序列化後的base64字串
// Redis Stream的values只接受字串，先編碼可以保住Go側的類型資訊
const payloadField = "data"

// DefaultParseToMessage 將事件編碼成可寫入stream的map
func DefaultParseToMessage[T any](data T) (map[string]any, error) {
	// 指標會讓接收端無法還原，直接拒絕
	if reflect.TypeOf(data).Kind() == reflect.Ptr {
		return nil, ErrPointerType
	}

	raw, err := msgpack.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("msgpack marshal error: %w", err)
	}

	return map[string]any{
		payloadField: base64.StdEncoding.EncodeToString(raw),
	}, nil
}

// DefaultParseFromMessage 從stream entry還原事件，空map返回零值
func DefaultParseFromMessage[T any](message map[string]any) (T, error) {
	var result T

	if reflect.TypeOf(result).Kind() == reflect.Ptr {
		return result, ErrPointerType
	}

	if len(message) == 0 {
		return result, nil
	}

	encoded, ok := message[payloadField].(string)
	if !ok {
		return result, fmt.Errorf("data field not found or invalid type")
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return result, fmt.Errorf("base64 decode error: %w", err)
	}

	if err := msgpack.Unmarshal(raw, &result); err != nil {
		return result, fmt.Errorf("msgpack unmarshal error: %w", err)
	}

	return result, nil
}

package sse

// PublishRequest 表示一個發布請求，將訊息與目標頻道綁定。
type PublishRequest[T any] struct {
	Channel string `json:"channel" msgpack:"channel"`
	Message T      `json:"message" msgpack:"message"`
}

// ISubscriber 對接跨節點的訊息來源（例如 Redis Stream 的消費者），
// ConnectionManager 會把它收到的訊息廣播給本機的訂閱者。
type ISubscriber[T any] interface {
	// Subscribe 返回接收跨節點訊息的唯讀通道
	Subscribe() <-chan PublishRequest[T]
}

// IConnectionManager 定義了 SSE 連線管理員的介面
type IConnectionManager[T any] interface {
	// Start 啟動 ConnectionManager，開始處理訊息的接收與廣播。
	// 應在呼叫其他方法前先呼叫此方法。
	Start()
	// Done 停止 ConnectionManager，釋放所有資源。
	Done()
	// Subscribe 註冊並訂閱指定頻道，返回一個新的 chan Message。
	Subscribe(channelName string) (<-chan T, error)
	// Publish 將資料推送到指定頻道。
	Publish(channelName string, data T) error
	// Unsubscribe 取消訂閱指定頻道。
	Unsubscribe(channelName string, ch <-chan T)
}

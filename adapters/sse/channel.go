package sse

import (
	"sync"
)

// Channel 持有單一主題的所有訂閱通道並負責廣播。
// 以唯讀通道作為key，Unsubscribe時才能從呼叫者手上的通道找回可寫端。
type Channel[T any] struct {
	subs map[<-chan T]chan T
	mu   sync.RWMutex
}

// NewChannel 建立一個新的 SSE 頻道。
func NewChannel[T any]() *Channel[T] {
	return &Channel[T]{
		subs: make(map[<-chan T]chan T),
	}
}

// Subscribe 建立一個新的訂閱通道並回傳唯讀端。
func (c *Channel[T]) Subscribe() <-chan T {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan T)
	c.subs[ch] = ch
	return ch
}

// Unsubscribe 移除訂閱並關閉通道，重複取消同一通道無效果。
func (c *Channel[T]) Unsubscribe(ch <-chan T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sub, exists := c.subs[ch]; exists {
		delete(c.subs, ch)
		close(sub)
	}
}

// UnsubscribeAll 關閉所有訂閱通道並清空訂閱清單。
func (c *Channel[T]) UnsubscribeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, sub := range c.subs {
		close(sub)
	}
	clear(c.subs)
}

// Broadcast 將訊息送給所有訂閱者。
// 通道無緩衝，訂閱者讀取前會阻塞，廣播期間的取消訂閱要等本輪結束。
func (c *Channel[T]) Broadcast(message T) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, sub := range c.subs {
		sub <- message
	}
}

// IsIdle 判斷是否已無任何訂閱者。
func (c *Channel[T]) IsIdle() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs) == 0
}

package sse_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"wayx/adapters/sse"
)

func TestChannel(t *testing.T) {
	t.Run("broadcast reaches every subscriber", func(t *testing.T) {
		ch := sse.NewChannel[Message]()

		first := ch.Subscribe()
		second := ch.Subscribe()
		assert.NotNil(t, first)
		assert.NotNil(t, second)

		msg := Message{Data: "bid placed"}
		go ch.Broadcast(msg)

		for _, sub := range []<-chan Message{first, second} {
			select {
			case received := <-sub:
				assert.Equal(t, msg, received)
			case <-time.After(time.Second):
				t.Fatal("did not receive message in time")
			}
		}
	})

	t.Run("unsubscribe closes the channel", func(t *testing.T) {
		ch := sse.NewChannel[Message]()
		sub := ch.Subscribe()

		ch.Unsubscribe(sub)
		_, ok := <-sub
		assert.False(t, ok, "channel should be closed")
		assert.True(t, ch.IsIdle(), "channel should be idle")

		// 重複取消不應panic
		ch.Unsubscribe(sub)
	})

	t.Run("unsubscribe all", func(t *testing.T) {
		ch := sse.NewChannel[Message]()
		first := ch.Subscribe()
		second := ch.Subscribe()
		assert.False(t, ch.IsIdle())

		ch.UnsubscribeAll()

		_, ok := <-first
		assert.False(t, ok)
		_, ok = <-second
		assert.False(t, ok)
		assert.True(t, ch.IsIdle())
	})
}

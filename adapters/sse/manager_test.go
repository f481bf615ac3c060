package sse_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"wayx/adapters/sse"
)

func TestConnectionManager(t *testing.T) {
	defer goleak.VerifyNone(t)

	cm, err := sse.NewConnectionManager[Message]()
	require.NoError(t, err)
	cm.Start()
	defer cm.Done()

	// 測試訂閱
	ch, err := cm.Subscribe("test_channel")
	assert.NoError(t, err)
	assert.NotNil(t, ch)

	// 測試發布訊息
	msg := Message{Data: "test message"}
	go func() {
		assert.NoError(t, cm.Publish("test_channel", msg))
	}()

	select {
	case received := <-ch:
		assert.Equal(t, msg, received)
	case <-time.After(time.Second):
		t.Fatal("did not receive message in time")
	}

	// 測試取消訂閱
	cm.Unsubscribe("test_channel", ch)
	_, ok := <-ch
	assert.False(t, ok, "channel should be closed")
}

func TestConnectionManagerWithSubscriber(t *testing.T) {
	defer goleak.VerifyNone(t)

	subscriber := newFakeSubscriber()
	cm, err := sse.NewConnectionManager[Message](
		sse.WithSubscriber[Message](subscriber),
	)
	require.NoError(t, err)
	cm.Start()
	defer cm.Done()

	ch, err := cm.Subscribe("listing-1")
	require.NoError(t, err)

	// 來自其他節點的訊息應被分發到對應頻道
	msg := Message{Data: "remote bid"}
	subscriber.ch <- sse.PublishRequest[Message]{Channel: "listing-1", Message: msg}

	select {
	case received := <-ch:
		assert.Equal(t, msg, received)
	case <-time.After(time.Second):
		t.Fatal("did not receive message in time")
	}

	// 不存在的頻道不會造成阻塞
	subscriber.ch <- sse.PublishRequest[Message]{Channel: "unknown", Message: msg}
	time.Sleep(50 * time.Millisecond)

	cm.Unsubscribe("listing-1", ch)
}

func TestConnectionManagerAfterDone(t *testing.T) {
	defer goleak.VerifyNone(t)

	cm, err := sse.NewConnectionManager[Message]()
	require.NoError(t, err)
	cm.Start()
	cm.Done()

	_, err = cm.Subscribe("test_channel")
	assert.Error(t, err)
	assert.Error(t, cm.Publish("test_channel", Message{Data: "late"}))

	// 重複呼叫Done不應造成panic
	cm.Done()
}

package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/smallnest/chanx"
)

// 待送佇列的初始容量，chanx會在事件湧入時自動擴容
const producerQueueSize = 100

type producerOptions struct {
	logger *slog.Logger
}

type ProducerOption func(*producerOptions)

// WithProducerLogger 設置日誌記錄器
func WithProducerLogger(logger *slog.Logger) ProducerOption {
	return func(o *producerOptions) {
		o.logger = logger
	}
}

// Producer 將事件寫入Redis Stream
// Publish只負責編碼與入隊，實際的XAdd由背景goroutine送出，
// 出價尖峰時請求端不會被Redis寫入延遲拖住
type Producer[T any] struct {
	client     *redis.Client
	stream     string
	queue      *chanx.UnboundedChan[map[string]any]
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	closed     bool
	logger     *slog.Logger
}

func NewProducer[T any](client *redis.Client, stream string, opts ...ProducerOption) (*Producer[T], error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	if stream == "" {
		return nil, errors.New("stream cannot be empty")
	}

	options := producerOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}

	return &Producer[T]{
		client: client,
		stream: stream,
		closed: true,
		logger: options.logger.With(slog.String("caller", "Producer"), slog.String("stream", stream)),
	}, nil
}

// Start 建立待送佇列並啟動背景送出goroutine，重複呼叫無效果
func (p *Producer[T]) Start() {
	if !p.closed {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.queue = chanx.NewUnboundedChan[map[string]any](ctx, producerQueueSize)
	p.cancelFunc = cancel
	p.closed = false
	p.logger.Info("starting stream producer")

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.logger.Info("producer goroutine stopped")

		for {
			select {
			case <-ctx.Done():
				return
			case values := <-p.queue.Out:
				id, err := p.client.XAdd(ctx, &redis.XAddArgs{
					Stream: p.stream,
					Values: values,
				}).Result()
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return
					}
					p.logger.Error("publish message error", slog.Any("error", err))
					continue
				}
				p.logger.Debug("message published", slog.String("messageId", id))
			}
		}
	}()
}

// Publish 將事件編碼後排入待送佇列，事件必須是值類型
func (p *Producer[T]) Publish(data T) error {
	if p.closed {
		return ErrConsumerClosed
	}
	values, err := DefaultParseToMessage(data)
	if err != nil {
		return fmt.Errorf("parse message error: %w", err)
	}
	p.queue.In <- values
	return nil
}

// Close 停止背景goroutine，佇列中尚未送出的事件會被丟棄
func (p *Producer[T]) Close() {
	if p.closed {
		return
	}
	p.logger.Info("closing stream producer")
	p.closed = true
	p.cancelFunc()
	p.wg.Wait()
	p.logger.Info("stream producer closed")
}

package api

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"wayx/adapters/oidc"
	redisAdapter "wayx/adapters/redis"
	"wayx/adapters/sse"
	"wayx/marketplace"
	"wayx/models"
)

type ServerImpl struct {
	oidcProviders map[string]*oidc.ExtendedProvider
	sseManager    sse.IConnectionManager[BidEvent]
	htmlChecker   *bluemonday.Policy
	redisClient   *redis.Client
	producer      redisAdapter.IProducer[BidEvent]
	consumer      redisAdapter.IConsumer[sse.PublishRequest[BidEvent]]
	groupConsumer redisAdapter.IGroupConsumer[BidEvent]
	tokenStore    redisAdapter.IStore
	loginStore    redisAdapter.IStore
	market        *marketplace.Marketplace
	db            *gorm.DB
	wg            sync.WaitGroup
	cancelFunc    context.CancelFunc

	// newMutex 建立需求單結標用的分散式鎖，測試時可以替換
	newMutex func(key string) redisAdapter.IAutoRenewMutex

	config ServerConfig
}

func NewServer(config ServerConfig) (*ServerImpl, error) {
	const op = "NewServer"

	// 初始化OIDC提供者
	oidcProviders := make(map[string]*oidc.ExtendedProvider, len(config.OIDC.Providers))
	for provider, providerConfig := range config.OIDC.Providers {
		oidcProvider, err := oidc.NewExtendedProvider(providerConfig.IssuerURL, providerConfig.ClientID, providerConfig.ClientSecret)
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to initial OIDC provider, provider=%s, err=%w", op, provider, err)
		}
		oidcProviders[provider] = oidcProvider
	}

	// 初始化資料庫連線
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s", config.DB.User, config.DB.Password, config.DB.Host, config.DB.Port, config.DB.Database, config.DB.Schema)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: config.DB.Schema + ".",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to connect to database, err=%w", op, err)
	}
	market, err := marketplace.New(db, marketplace.WithLogger(slog.Default()))
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create marketplace, err=%w", op, err)
	}

	// 初始化Redis連線
	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})

	// 初始化出價事件的生產者
	producer, err := redisAdapter.NewProducer[BidEvent](redisClient, config.Redis.StreamKeys.BidStream)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create producer, err=%w", op, err)
	}

	// 初始化SSE管理器，將stream上的出價事件廣播給訂閱中的連線
	consumer, err := redisAdapter.NewConsumer(
		redisClient,
		config.Redis.StreamKeys.BidStream,
		redisAdapter.WithConsumerParseFunc(func(m map[string]any) (sse.PublishRequest[BidEvent], error) {
			event, err := redisAdapter.DefaultParseFromMessage[BidEvent](m)
			if err != nil {
				return sse.PublishRequest[BidEvent]{}, fmt.Errorf("fail to parse message to sse.PublishRequest[BidEvent], err=%w", err)
			}
			return sse.PublishRequest[BidEvent]{
				Channel: event.ListingID.String(),
				Message: event,
			}, nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create consumer, err=%w", op, err)
	}
	sseManager, err := sse.NewConnectionManager[BidEvent](
		sse.WithLogger[BidEvent](slog.Default()),
		sse.WithSubscriber[BidEvent](consumer),
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create sse connection manager, err=%w", op, err)
	}

	// 初始化group consumer，通知worker用它消費出價事件
	groupConsumer, err := redisAdapter.NewGroupConsumer[BidEvent](
		redisClient,
		config.Redis.StreamKeys.BidStream,
		config.Redis.ConsumerGroup,
		config.ID,
		redisAdapter.WithGroupConsumerLogger[BidEvent](slog.Default()),
		redisAdapter.WithGroupConsumerStrictOrdering[BidEvent](true),
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create group consumer, err=%w", op, err)
	}

	return &ServerImpl{
		oidcProviders: oidcProviders,
		sseManager:    sseManager,
		htmlChecker:   bluemonday.UGCPolicy(),
		redisClient:   redisClient,
		producer:      producer,
		consumer:      consumer,
		groupConsumer: groupConsumer,
		loginStore: redisAdapter.NewStore(
			redisClient,
			redisAdapter.WithStorePrefix(config.Redis.KeyPrefix+"login:"),
			redisAdapter.WithStoreTTL(2*time.Minute),
		),
		tokenStore: redisAdapter.NewStore(
			redisClient,
			redisAdapter.WithStorePrefix(config.Redis.KeyPrefix+"sso-token:"),
			redisAdapter.WithStoreTTL(config.Auth.ExpireDuration),
		),
		market: market,
		db:     db,
		newMutex: func(key string) redisAdapter.IAutoRenewMutex {
			return redisAdapter.NewAutoRenewMutex(redisClient, key)
		},
		config: config,
	}, nil
}

func (impl *ServerImpl) Start() {
	// 啟動producer
	impl.producer.Start()
	// 啟動consumer
	impl.consumer.Start()
	// 啟動sse connection manager
	impl.sseManager.Start()
	// 啟動group consumer
	impl.groupConsumer.Start()
	// 啟動一個worker將出價事件轉成給貨主的站內通知
	ctx, cancel := context.WithCancel(context.Background())
	impl.cancelFunc = cancel
	slog.Info("Start bid notification worker")
	impl.wg.Add(1)
	go func() {
		logger := slog.Default().With(slog.String("caller", "BidNotification"))
		defer impl.wg.Done()
		defer slog.Info("Bid notification worker stopped")
		defer impl.groupConsumer.Close()
		ch := impl.groupConsumer.Subscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				logger.Debug("Receive bid event")
				handleErr := impl.notifyOwner(ctx, msg.Data)
				if handleErr != nil {
					logger.Error("Fail to handle bid event", slog.Any("error", handleErr))
					if err := msg.Fail(ctx, handleErr); err != nil {
						logger.Error("Fail to fail message", slog.Any("error", err))
					}
					continue
				}
				if err := msg.Done(ctx); err != nil {
					logger.Error("Handled event but fail to done message", slog.Any("error", err))
					if err := msg.Fail(ctx, err); err != nil {
						logger.Error("Handled event but fail to fail message", slog.Any("error", err))
					}
					continue
				}
				logger.Debug("Bid event handled")
			}
		}
	}()
}

// notifyOwner 針對一筆出價事件建立給需求單貨主的通知
func (impl *ServerImpl) notifyOwner(ctx context.Context, event BidEvent) error {
	listing, err := impl.market.GetListing(ctx, event.ListingID)
	if err != nil {
		return fmt.Errorf("fail to find listing for bid event, err=%w", err)
	}
	_, err = impl.market.Notify(ctx, listing.OwnerID, marketplace.NotificationInput{
		Title:   "New bid received",
		Message: fmt.Sprintf("%s offered %d %s for %q", event.BidderName, event.Amount, listing.Currency, listing.Title),
		Type:    models.NotificationInfo,
		Link:    "/listings/" + listing.ID.String(),
	})
	if err != nil {
		return fmt.Errorf("fail to create notification, err=%w", err)
	}
	return nil
}

func (impl *ServerImpl) Close() {
	// 關閉group consumer
	impl.groupConsumer.Close()
	// 關閉worker
	if impl.cancelFunc != nil {
		impl.cancelFunc()
	}
	impl.wg.Wait()
	// 關閉producer和consumer
	impl.producer.Close()
	impl.consumer.Close()
	// 關閉sse connection manager
	impl.sseManager.Done()
}

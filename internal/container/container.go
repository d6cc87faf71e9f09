package container

import (
	"context"
	"fmt"

	"autotrader/crawler/internal/client"
	"autotrader/crawler/internal/config"
	"autotrader/crawler/internal/queue"
	"autotrader/crawler/internal/repository"
	"autotrader/crawler/internal/service"
	"autotrader/crawler/internal/state"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Container holds all initialized components
type Container struct {
	Config     *config.Config
	Client     client.AutoTraderClient
	Repository repository.ListingRepository
	Publisher  queue.Publisher
	State      state.CrawlState

	Service *service.Service

	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(cfg *config.Config) (*Container, error) {
	return NewWithFs(cfg, afero.NewOsFs())
}

// NewWithFs is New with the filesystem listings are written to
func NewWithFs(cfg *config.Config, fs afero.Fs) (*Container, error) {
	container := &Container{
		Config:    cfg,
		Publisher: queue.NopPublisher{},
		State:     state.NewMemoryState(cfg.AutoTrader.SearchStart),
	}

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})

		// Test connection
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("✅ Connected to Redis successfully")

		container.redis = rdb
		container.State = state.NewRedisState(rdb, cfg.Redis.KeyPrefix, cfg.AutoTrader.SearchStart)
		container.Publisher = queue.NewRedisPublisher(rdb, cfg.Redis)
	}

	autoTraderClient := client.NewAutoTraderClient(cfg.AutoTrader, cfg.Search, client.VehicleDataStrategy{})
	container.Client = autoTraderClient

	listingRepo := repository.NewListingRepository(fs, cfg.Storage.RootDir, cfg.Storage.MetaFile, autoTraderClient)
	container.Repository = listingRepo

	paginator := service.NewPaginator(autoTraderClient, container.State, cfg.AutoTrader.SearchBy)

	container.Service = service.NewService(
		paginator,
		autoTraderClient,
		listingRepo,
		container.Publisher,
		cfg.AutoTrader.BaseURL,
		cfg.AutoTrader.AbortPageOnError,
	)

	return container, nil
}

// Run crawls until ctx is cancelled
func (c *Container) Run(ctx context.Context) error {
	return c.Service.Run(ctx)
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if err := c.Client.Close(); err != nil {
		log.Warnf("Failed to close HTTP client: %v", err)
	}
	// the publisher shares the Redis client
	if c.redis != nil {
		c.redis.Close()
	}

	log.Info("Container shut down successfully")
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/adapters/cache"
	"github.com/comitanigiacomo/kanso-progress-engine/internal/adapters/database"
	"github.com/comitanigiacomo/kanso-progress-engine/internal/adapters/feed"
	adapterHTTP "github.com/comitanigiacomo/kanso-progress-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-progress-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-progress-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-progress-engine/internal/config"
	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/services"
	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/workers"
)

const listenRetryDelay = 3 * time.Second

type app struct {
	router      *gin.Engine
	coordinator *workers.RefreshCoordinator
	feed        feed.Feed
	tokens      *services.TokenService

	db    *sqlx.DB
	redis *redis.Client
}

func buildApp(ctx context.Context, cfg *config.Config, startTime time.Time) (*app, error) {
	a := &app{}

	var (
		habitRepo domain.HabitRepository
		eventRepo domain.TrackingEventRepository
	)

	dbCfg := database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Name:     cfg.Database.Name,
	}

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		log.Println("[DB] Connecting to database...")
		db, err := database.Connect(dbCfg)
		if err != nil {
			return nil, err
		}
		a.db = db

		applied, err := database.Migrate(ctx, db)
		if err != nil {
			a.Close()
			return nil, err
		}
		log.WithField("applied", applied).Info("[DB] Database connected and migrated")

		habitRepo = repository.NewPostgresHabitRepository(db)
		eventRepo = repository.NewPostgresTrackingEventRepository(db)
	default:
		log.Warn("[DB] Using in-memory storage, data is lost on restart")
		habitRepo = repository.NewInMemoryHabitRepository()
		eventRepo = repository.NewInMemoryTrackingEventRepository()
	}

	var snapshots domain.SnapshotStore
	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedisClient(cache.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		switch {
		case err == nil:
			a.redis = rdb
			habitRepo = repository.NewCachedHabitRepository(habitRepo, rdb, cfg.HabitCacheTTL)
			snapshots = cache.NewRedisSnapshotStore(rdb, cfg.SnapshotTTL)
			log.Info("[CACHE] Redis connected")
		case cfg.FeedDriver == config.FeedRedis:
			a.Close()
			return nil, fmt.Errorf("redis change feed: %w", err)
		default:
			log.WithError(err).Warn("[CACHE] Redis unavailable, running without cache, snapshots and rate limiting")
		}
	}

	// With the Postgres feed the tracking_events trigger announces event
	// writes, so only habit edits are published explicitly.
	var eventPublisher domain.ChangePublisher
	switch cfg.FeedDriver {
	case config.FeedPostgres:
		a.feed = feed.NewPostgresFeed(a.db, dbCfg.DSN(), feed.Channel)
	case config.FeedRedis:
		a.feed = feed.NewRedisFeed(a.redis, feed.Channel)
		eventPublisher = a.feed
	default:
		a.feed = feed.NewMemoryBroker(256)
		eventPublisher = a.feed
	}

	builder := services.NewProgressBuilder(habitRepo, eventRepo, snapshots, domain.SystemClock{})
	a.coordinator = workers.NewRefreshCoordinator(builder, workers.CoordinatorConfig{
		Debounce:   cfg.Refresh.Debounce,
		RetryDelay: cfg.Refresh.RetryDelay,
		Workers:    cfg.Refresh.Workers,
		QueueSize:  cfg.Refresh.QueueSize,
	})

	habitService := services.NewHabitService(habitRepo, a.feed)
	trackingService := services.NewTrackingService(eventRepo, habitRepo, eventPublisher)
	progressService := services.NewProgressService(builder, a.coordinator, snapshots, domain.SystemClock{})
	a.tokens = services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)

	a.router = adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		HabitHandler:    adapterHTTP.NewHabitHandler(habitService),
		TrackingHandler: adapterHTTP.NewTrackingHandler(trackingService),
		ProgressHandler: adapterHTTP.NewProgressHandler(progressService, cfg.StreamKeepAlive),
		TokenService:    a.tokens,
		DB:              a.db,
		Redis:           a.redis,
		RateLimit:       middleware.RateLimit{Limit: cfg.RateLimit, Window: cfg.RateWindow},
		StartTime:       startTime,
		EnableDocs:      cfg.EnableDocs,
	})

	return a, nil
}

// run starts the refresh workers and keeps the coordinator subscribed to the
// change feed until ctx is done.
func (a *app) run(ctx context.Context) {
	a.coordinator.Start(ctx)

	go func() {
		for {
			err := a.coordinator.Listen(ctx, a.feed)
			if ctx.Err() != nil {
				return
			}
			if err == nil {
				err = errors.New("listener stopped")
			}
			log.WithError(err).Warnf("[REFRESH] change feed lost, resubscribing in %s", listenRetryDelay)

			select {
			case <-time.After(listenRetryDelay):
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.WithError(err).Warn("[CACHE] close failed")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.WithError(err).Warn("[DB] close failed")
		}
	}
}

package app

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/hop/internal/config"
	"github.com/MrSnakeDoc/hop/internal/index"
	"github.com/MrSnakeDoc/hop/internal/links"
	"github.com/MrSnakeDoc/hop/internal/logger"
	"github.com/MrSnakeDoc/hop/internal/redis"
	"github.com/MrSnakeDoc/hop/internal/scheduler"
	"github.com/MrSnakeDoc/hop/internal/sources/title"
	redisstore "github.com/MrSnakeDoc/hop/internal/store/redis"
	"github.com/MrSnakeDoc/hop/internal/store/sqlite"
	"github.com/MrSnakeDoc/hop/internal/syncer"
	"github.com/MrSnakeDoc/hop/internal/utils"
)

// ErrOffline is returned by Sync when no remote link store is reachable.
var ErrOffline = errors.New("no remote link store configured")

// Core holds everything shared by the server and the one-shot commands:
// the local store loaded into the index, the links service and, when a
// remote is reachable, the sync orchestrator.
type Core struct {
	Config   *config.Config
	Logger   logger.Logger
	DB       *sqlite.DB
	Index    *index.LinkIndex
	Saver    *syncer.Saver
	Links    *links.Service
	Notifier *syncer.Notifier

	// nil when offline
	Remote      *redisstore.Store
	Sync        *syncer.Orchestrator
	redisClient *goredis.Client
}

// NewCore opens the local store, loads it and connects the remote.
// A remote that cannot be reached leaves the core offline rather than
// failing: every local operation keeps working.
func NewCore(ctx context.Context, cfg *config.Config, log logger.Logger) (*Core, error) {
	db, err := sqlite.Open(cfg.DBPath, log)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		utils.Close(db)
		return nil, err
	}

	idx := index.NewLinkIndex()
	saver := syncer.NewSaver(idx, db)

	if err := scheduler.NewLocalLoader(saver, log).Load(ctx); err != nil {
		utils.Close(db)
		return nil, fmt.Errorf("failed to load local links: %w", err)
	}

	var titles links.TitleFetcher
	if cfg.FetchTitles {
		titles = title.NewFetcher(cfg.TitleTimeout)
	}

	c := &Core{
		Config:   cfg,
		Logger:   log,
		DB:       db,
		Index:    idx,
		Saver:    saver,
		Links:    links.NewService(idx, saver, titles, log),
		Notifier: syncer.NewNotifier(cfg.ToastDuration),
	}

	if cfg.Offline() {
		log.Info("no remote configured, running offline")
		return c, nil
	}

	client, err := redis.Connect(ctx, redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		DB:             cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, log)
	if err != nil {
		log.Warn("remote unavailable, running offline", logger.Error(err))
		return c, nil
	}

	c.redisClient = client
	c.Remote = redisstore.NewStore(client)
	c.Sync = syncer.NewOrchestrator(c.Remote, saver, idx, c.Notifier, log)
	return c, nil
}

// Online reports whether a remote is connected.
func (c *Core) Online() bool {
	return c.Sync != nil
}

// SyncNow runs one sync round.
func (c *Core) SyncNow(ctx context.Context) (syncer.Result, error) {
	if !c.Online() {
		return syncer.Result{}, ErrOffline
	}
	return c.Sync.Sync(ctx)
}

// Close releases the remote connection and the local database.
func (c *Core) Close() {
	if c.redisClient != nil {
		utils.CloseLogged(c.redisClient, c.Logger, "redis")
	}
	utils.CloseLogged(c.DB, c.Logger, "sqlite")
}

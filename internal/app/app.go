package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/rcapi/internal/config"
	"github.com/MrSnakeDoc/rcapi/internal/domain"
	"github.com/MrSnakeDoc/rcapi/internal/httpserver"
	"github.com/MrSnakeDoc/rcapi/internal/httpserver/deps"
	"github.com/MrSnakeDoc/rcapi/internal/logger"
	"github.com/MrSnakeDoc/rcapi/internal/manifest"
	"github.com/MrSnakeDoc/rcapi/internal/redis"
	"github.com/MrSnakeDoc/rcapi/internal/scheduler"
	"github.com/MrSnakeDoc/rcapi/internal/service"
	"github.com/MrSnakeDoc/rcapi/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/rcapi/internal/store/redis"
	"github.com/MrSnakeDoc/rcapi/internal/utils"
	"github.com/MrSnakeDoc/rcapi/internal/version"
)

// backend is everything the app needs from a store.
type backend interface {
	domain.Store
	domain.BayLookup
	domain.BayWriter
	Ping(ctx context.Context) error
}

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client // nil with the memory store
	reloader    *scheduler.BayReloader
	pruner      *scheduler.BayPruner
}

// New reads the configuration and wires every component. Redis must be
// reachable within its connect budget.
func New(ctx context.Context) (*App, error) {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.PrettyLog)

	store, redisClient, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	svc := service.New(store, store, manifest.NewParser(cfg.ManifestFetchTimeout), cfg.MaxLimit, log)

	reloadTrigger := make(chan struct{}, 1)
	reloader := scheduler.NewBayReloader(cfg.BayFile, store, log, cfg.ReloadInterval, reloadTrigger)
	pruner := scheduler.NewBayPruner(store, log, cfg.BayPruneInterval, cfg.BayStaleAfter)

	d := deps.Deps{
		Logger:        log,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		AllowedHosts:  cfg.AllowedHosts,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		PublicURL:     cfg.PublicURL,
		Service:       svc,
		Store:         store,
		LastBayReload: reloader.LastReload,
		ReloadTrigger: reloadTrigger,
		RateBurst:     cfg.RateBurst,
		RateRefill:    cfg.RateRefillPerMin,
	}

	return &App{
		cfg:         cfg,
		logger:      log,
		server:      httpserver.New(cfg, log, d),
		redisClient: redisClient,
		reloader:    reloader,
		pruner:      pruner,
	}, nil
}

func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (backend, *goredis.Client, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using the in-memory store, records are lost on restart")
		return memory.NewStore(), nil, nil
	}

	log.Info("connecting to redis", logger.String("addr", cfg.RedisAddr))
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
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	store := redisstore.NewStore(client)

	// a crash between the record write and the index write leaves the
	// listing index behind; fix it before serving
	if err := scheduler.NewIndexRepair(store, log).Run(ctx); err != nil {
		log.Warn("index repair failed, listings may be incomplete", logger.Error(err))
	}
	return store, client, nil
}

func (a *App) Run() error {
	a.logger.Info("🚀 starting "+version.String(), logger.String("listen", a.cfg.ListenPort))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start bay reloader: %w", err)
	}
	a.logger.Info("bay reloader started", logger.Duration("interval", a.cfg.ReloadInterval))

	a.pruner.Start(ctx)
	a.logger.Info("bay pruner started",
		logger.Duration("interval", a.cfg.BayPruneInterval),
		logger.Duration("stale_after", a.cfg.BayStaleAfter))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.server.Start(); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("⏳ shutting down gracefully")

		a.reloader.Stop()
		a.pruner.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := a.server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
		return nil
	})
	err := g.Wait()

	if a.redisClient != nil {
		utils.CloseLogged(a.redisClient, "redis", a.logger)
	}
	_ = a.logger.Sync()

	if err != nil {
		return err
	}
	a.logger.Info("✅ rcapi stopped cleanly")
	return nil
}

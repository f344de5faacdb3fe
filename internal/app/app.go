package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/restore-sites/internal/config"
	"github.com/MrSnakeDoc/restore-sites/internal/detect"
	"github.com/MrSnakeDoc/restore-sites/internal/httpserver"
	"github.com/MrSnakeDoc/restore-sites/internal/httpserver/deps"
	"github.com/MrSnakeDoc/restore-sites/internal/index"
	"github.com/MrSnakeDoc/restore-sites/internal/launcher"
	"github.com/MrSnakeDoc/restore-sites/internal/logger"
	"github.com/MrSnakeDoc/restore-sites/internal/metrics"
	"github.com/MrSnakeDoc/restore-sites/internal/redis"
	"github.com/MrSnakeDoc/restore-sites/internal/scheduler"
	"github.com/MrSnakeDoc/restore-sites/internal/service"
	"github.com/MrSnakeDoc/restore-sites/internal/sources/profiles"
	redisstore "github.com/MrSnakeDoc/restore-sites/internal/store/redis"
	"github.com/MrSnakeDoc/restore-sites/internal/utils"
	"github.com/MrSnakeDoc/restore-sites/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	service     *service.Service
	syncer      *scheduler.ProfileSyncer
	detection   *scheduler.DetectionRefresher
	gc          *scheduler.GarbageCollector
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.Connect(context.Background(), redis.ConnectOptions{
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
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	m := metrics.New()

	store := redisstore.NewStore(redisClient, loggerClient, redisstore.WithMetrics(m))
	if err := store.Init(context.Background()); err != nil {
		loggerClient.Errorf("Failed to initialize the database header: %v", err)
		os.Exit(1)
	}

	idx := index.NewProfileIndex()
	svc := service.New(service.Options{
		Store:    store,
		Index:    idx,
		Detector: detect.New(detect.WithOS(cfg.LaunchOS)),
		Launcher: newLauncher(cfg, loggerClient),
		LaunchOS: cfg.LaunchOS,
		Metrics:  m,
		Logger:   loggerClient,
	})

	if cfg.ProfileFile != "" {
		seedProfiles(context.Background(), cfg.ProfileFile, svc, loggerClient)
	}

	// Create manual detection trigger channel
	detectTrigger := make(chan struct{}, 1)

	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Build:         version.Get(),
		TimeNow:       time.Now,
		AllowedHosts:  cfg.AllowedHosts,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		MaxBodyBytes:  cfg.MaxBodyBytes,
		Service:       svc,
		Store:         store,
		Index:         idx,
		Metrics:       m,
		LaunchOS:      cfg.LaunchOS,
		DryRun:        cfg.DryRunLaunch,
		DetectTrigger: detectTrigger,
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, loggerClient, d),
		redisClient: redisClient,
		service:     svc,
		syncer:      scheduler.NewProfileSyncer(svc, loggerClient, cfg.ProfileSyncInterval),
		detection:   scheduler.NewDetectionRefresher(svc, loggerClient, cfg.DetectInterval, detectTrigger),
		gc:          scheduler.NewGarbageCollector(store, loggerClient, cfg.PruneInterval),
	}
}

// newLauncher never spawns processes: the dry-run launcher logs each
// command, the other one only validates the plan.
func newLauncher(cfg *config.Config, log logger.Logger) launcher.Launcher {
	if cfg.DryRunLaunch {
		return launcher.NewDryRun(cfg.LaunchOS, log)
	}
	return launcher.NewDiscard(cfg.LaunchOS)
}

// seedProfiles loads the YAML profile file. A broken file is logged and
// ignored so the API still comes up.
func seedProfiles(ctx context.Context, path string, svc *service.Service, log logger.Logger) {
	file, err := profiles.NewLoader(path).Load()
	if err != nil {
		log.Warn("failed to load profile seed file", logger.String("file", path), logger.Error(err))
		return
	}
	seed, err := profiles.NewMapper().MapProfiles(file, time.Now())
	if err != nil {
		log.Warn("profile seed file rejected", logger.String("file", path), logger.Error(err))
		return
	}
	created, err := svc.SeedProfiles(ctx, seed)
	if err != nil {
		log.Warn("failed to seed profiles", logger.Error(err))
		return
	}
	log.Info("profile seed applied",
		logger.String("file", path),
		logger.Int("entries", len(seed)),
		logger.Int("created", created))
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting restore-sites v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("restore-sites %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.syncer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start profile syncer: %w", err)
	}
	a.logger.Info("profile syncer started",
		logger.Duration("interval", a.cfg.ProfileSyncInterval))

	if err := a.detection.Start(ctx); err != nil {
		return fmt.Errorf("failed to start detection refresher: %w", err)
	}
	a.logger.Info("detection refresher started",
		logger.Duration("interval", a.cfg.DetectInterval),
		logger.String("os", a.cfg.LaunchOS))

	if err := a.gc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start garbage collector: %w", err)
	}
	a.logger.Info("garbage collector started",
		logger.Duration("interval", a.cfg.PruneInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.syncer.Stop()
	a.detection.Stop()
	a.gc.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	utils.CloseLogged(a.redisClient, "redis", a.logger)

	a.logger.Info("✅ restore-sites stopped cleanly")
	_ = a.logger.Sync()
	return nil
}

package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/aroundegypt/internal/aroundegypt"
	"github.com/mrlokans/aroundegypt/internal/catalog"
	"github.com/mrlokans/aroundegypt/internal/config"
	"github.com/mrlokans/aroundegypt/internal/connectivity"
	"github.com/mrlokans/aroundegypt/internal/database"
	"github.com/mrlokans/aroundegypt/internal/database/experiences"
	"github.com/mrlokans/aroundegypt/internal/database/settings"
	http_controllers "github.com/mrlokans/aroundegypt/internal/http"
	"github.com/mrlokans/aroundegypt/internal/likes"
	"github.com/mrlokans/aroundegypt/internal/logger"
	"github.com/mrlokans/aroundegypt/internal/metrics"
	"github.com/mrlokans/aroundegypt/internal/scheduler"
	"github.com/mrlokans/aroundegypt/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, log *zap.Logger, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Info("Starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Listen failed", zap.Error(err))
		}
	}()

	// Wait for SIGINT/SIGTERM, then shut down within the configured timeout.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server", zap.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}

	log.Info("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log, err := logger.NewLogger(cfg.Log.Env, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	log.Info("Starting AroundEgypt", zap.String("version", version))
	metrics.Register()

	db, err := database.NewDatabase(cfg.Database.Path, cfg.Database.LogLevel, log)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("Error closing database", zap.Error(err))
		}
	}()

	cache := experiences.NewRepository(db.DB, log.Named("cache"))
	settingsRepo := settings.NewRepository(db.DB)
	tracker := likes.NewTracker(settingsRepo)
	client := aroundegypt.NewClient(cfg.API.BaseURL, cfg.API.Timeout)

	monitor := connectivity.NewMonitor(connectivity.MonitorConfig{
		ProbeURL: cfg.Connectivity.ProbeURL,
		Schedule: cfg.Connectivity.ProbeSchedule,
		Timeout:  cfg.Connectivity.ProbeTimeout,
	}, log.Named("connectivity"))

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	if err := monitor.Start(bgCtx); err != nil {
		log.Fatal("Failed to start connectivity monitor", zap.Error(err))
	}

	orch := catalog.New(client, cache, tracker, monitor, log.Named("catalog"))

	// Refreshes run on the task queue when it is enabled, otherwise in-process.
	var taskClient *tasks.Client
	var trigger scheduler.RefreshEnqueuer
	var direct *tasks.DirectRefresher
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg, log)
		if err != nil {
			log.Fatal("Failed to initialize task queue", zap.Error(err))
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Warn("Error closing task client", zap.Error(err))
			}
		}()

		taskClient.Register(tasks.NewRefreshCatalogQueue(orch, settingsRepo, log.Named("refresh")))
		go taskClient.Start(bgCtx)
		trigger = taskClient
	} else {
		direct = tasks.NewDirectRefresher(orch, settingsRepo, log.Named("refresh"))
		trigger = direct
	}

	var refreshScheduler *scheduler.RefreshScheduler
	if cfg.Refresh.Enabled {
		refreshScheduler = scheduler.NewRefreshScheduler(trigger, cfg.Refresh.Schedule, log.Named("scheduler"))
		if err := refreshScheduler.Start(bgCtx); err != nil {
			log.Error("Failed to start refresh scheduler", zap.Error(err))
			refreshScheduler = nil
		}
		if _, err := trigger.EnqueueRefresh("startup"); err != nil {
			log.Warn("Failed to enqueue startup refresh", zap.Error(err))
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Catalog:      orch,
		Connectivity: monitor,
		Database:     db,
		Cache:        cache,
		Settings:     settingsRepo,
		Refresh:      trigger,
		Logger:       log.Named("http"),
		Version:      version,
	}
	if taskClient != nil {
		routerCfg.TaskClient = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		if refreshScheduler != nil {
			refreshScheduler.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		if direct != nil {
			direct.Wait()
		}
		monitor.Stop()
		bgCancel()
	}

	Serve(router, cfg, log, onShutdown)
}

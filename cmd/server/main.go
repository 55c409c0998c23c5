package main

import (
	"context"
	"flag"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/taskflow/backend/internal/config"
	"github.com/taskflow/backend/internal/core/ports"
	"github.com/taskflow/backend/internal/core/services"
	"github.com/taskflow/backend/internal/infrastructure/cache"
	"github.com/taskflow/backend/internal/infrastructure/db"
	"github.com/taskflow/backend/internal/infrastructure/logger"
	transporthttp "github.com/taskflow/backend/internal/transport/http"
	"github.com/taskflow/backend/internal/transport/ws"
)

func main() {
	configPath := flag.String("config", config.DefaultPath(), "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	ctx := context.Background()
	store, err := db.Open(ctx, cfg.Store, log.Named("store"))
	if err != nil {
		log.Fatalf("failed to open task store: %v", err)
	}
	log.Infow("task store ready", "driver", store.Name)

	var repo ports.TaskRepository = store.Tasks
	var redisCache *cache.Cache
	if cfg.Cache.Enabled {
		redisCache, err = cache.Connect(ctx, cfg.Cache)
		if err != nil {
			log.Warnw("cache disabled", "error", err)
		} else {
			repo = cache.NewTaskRepository(repo, redisCache, log.Named("cache"))
			log.Infow("cache enabled", "addr", cfg.Cache.Addr, "ttl", cfg.Cache.TTL)
		}
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	var hub *ws.Hub
	var events ports.TaskEventPublisher
	if cfg.Features.EnableEvents {
		hub = ws.NewHub(log.Named("events"))
		events = hub
		go hub.Run(hubCtx)
	}

	service := services.NewTaskService(services.TaskServiceConfig{
		Repository: repo,
		Events:     events,
		Logger:     log.Named("tasks"),
	})

	routerCfg := transporthttp.RouterConfig{
		Service: service,
		Health:  store,
		Hub:     hub,
		Logger:  log,
		Config:  cfg,
	}
	if redisCache != nil {
		routerCfg.Cache = redisCache
	}
	app := transporthttp.NewApp(routerCfg)

	addr := cfg.Server.Address()
	go func() {
		if err := app.Listen(addr); err != nil {
			log.Fatalf("server failed to start: %v", err)
		}
	}()
	log.Infow("server started", "addr", addr, "mode", cfg.Server.Mode)

	wait := gfshutdown.GracefulShutdown(
		ctx,
		cfg.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"taskflow": func(ctx context.Context) error {
				log.Info("shutting down server...")
				if err := app.ShutdownWithContext(ctx); err != nil {
					log.Errorf("server forced to shutdown: %v", err)
				}
				stopHub()
				if redisCache != nil {
					if err := redisCache.Close(); err != nil {
						log.Errorf("failed to close cache: %v", err)
					}
				}
				return store.Close(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Infow("server exited", "code", exitCode)
	_ = log.Sync()
	os.Exit(exitCode)
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appsync "github.com/erp/content-sync/internal/application/sync"
	domainsync "github.com/erp/content-sync/internal/domain/sync"
	"github.com/erp/content-sync/internal/infrastructure/cache"
	"github.com/erp/content-sync/internal/infrastructure/cms"
	"github.com/erp/content-sync/internal/infrastructure/commerce"
	"github.com/erp/content-sync/internal/infrastructure/config"
	"github.com/erp/content-sync/internal/infrastructure/event"
	"github.com/erp/content-sync/internal/infrastructure/logger"
	"github.com/erp/content-sync/internal/infrastructure/persistence"
	"github.com/erp/content-sync/internal/interfaces/http/handler"
	"github.com/erp/content-sync/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer log.Sync()

	log.Info("starting content-sync bridge",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port))

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("failed to connect mapping database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		log.Fatal("failed to migrate mapping database", zap.Error(err))
	}

	echo := newEchoStore(cfg, log)

	sessionCfg := cms.SessionConfig{
		BaseURL:        cfg.CMS.BaseURL,
		Identifier:     cfg.CMS.Identifier,
		Password:       cfg.CMS.Password,
		TimeoutSeconds: cfg.CMS.TimeoutSeconds,
	}
	session := cms.NewSessionManager(sessionCfg, log)
	entryClient := cms.NewClient(sessionCfg, session, log)

	// The CMS often boots more slowly than the bridge; authenticate in
	// the background once it answers instead of blocking startup.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := session.WaitUntilHealthy(ctx, cfg.Sync.HealthPollInterval); err != nil {
			log.Error("cms health probe gave up", zap.Error(err))
			return
		}
		if err := session.Login(ctx); err != nil {
			log.Error("cms login failed at startup", zap.Error(err))
		}
	}()

	api := commerce.NewAPI(commerce.Config{
		BaseURL:        cfg.Commerce.BaseURL,
		Token:          cfg.Commerce.Token,
		TimeoutSeconds: cfg.Commerce.TimeoutSeconds,
	}, log)
	products := commerce.NewProductAPI(api)
	variants := commerce.NewVariantAPI(api)
	regions := commerce.NewRegionAPI(api)
	categories := commerce.NewCategoryAPI(api)
	collections := commerce.NewCollectionAPI(api)

	mapper := domainsync.NewMapper(customFieldRemaps(cfg))
	mappings := persistence.NewGormEntryMappingRepository(db.DB)

	forward := appsync.NewForwardSyncService(
		products, variants, regions, categories, collections,
		entryClient, mappings, echo, mapper, log)
	reverse := appsync.NewReverseSyncService(
		products, variants, regions, categories, collections, echo, log)

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(appsync.NewSyncEventHandler(forward))

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	router.NewRouter(engine).
		Register(handler.NewHooksHandler(bus, reverse, log)).
		Register(handler.NewHealthHandler(session, db)).
		Setup()

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}

// newEchoStore picks the Redis-backed store when Redis is enabled and
// falls back to the in-memory one otherwise. A Redis connection failure
// at startup also falls back, since losing shared markers only costs
// redundant syncs.
func newEchoStore(cfg *config.Config, log *zap.Logger) domainsync.EchoMarkerStore {
	if !cfg.Redis.Enabled {
		return cache.NewInMemoryEchoStore(cfg.Sync.IgnoreWindow)
	}
	store, err := cache.NewRedisEchoStore(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Sync.IgnoreWindow, log)
	if err != nil {
		log.Warn("redis unavailable, using in-memory echo markers", zap.Error(err))
		return cache.NewInMemoryEchoStore(cfg.Sync.IgnoreWindow)
	}
	return store
}

func customFieldRemaps(cfg *config.Config) map[domainsync.EntityType]map[string]string {
	remaps := make(map[domainsync.EntityType]map[string]string, len(cfg.Sync.CustomFields))
	for rawType, fields := range cfg.Sync.CustomFields {
		t := domainsync.EntityType(rawType)
		if !t.IsValid() || len(fields) == 0 {
			continue
		}
		remaps[t] = fields
	}
	return remaps
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kasuganosora/questservice/api"
	apirest "github.com/kasuganosora/questservice/api/rest"
	"github.com/kasuganosora/questservice/api/sse"
	"github.com/kasuganosora/questservice/audit"
	"github.com/kasuganosora/questservice/cache"
	"github.com/kasuganosora/questservice/config"
	dbadapter "github.com/kasuganosora/questservice/db"
	"github.com/kasuganosora/questservice/game/quest"
	"github.com/kasuganosora/questservice/game/reward"
	"github.com/kasuganosora/questservice/logging"
	"github.com/kasuganosora/questservice/model"
	"github.com/kasuganosora/questservice/observability"
	"github.com/kasuganosora/questservice/scheduler"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	logger, err := logging.New(cfg.Server.Debug, cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; /server and /admin endpoints are disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Tracing ----
	shutdownTracing := observability.InitTracing(ctx, cfg.Telemetry, logger)
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		logger.Fatal("db open", zap.Error(err))
	}
	if err := model.AutoMigrate(db); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))

	// ---- Cache / PubSub ----
	store, err := cache.Open(ctx, cfg.Cache)
	if err != nil {
		logger.Fatal("cache", zap.Error(err))
	}
	defer store.Close()
	logger.Info("Cache initialized", zap.Bool("redis", cfg.Cache.RedisAddr != ""))

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(context.Background())

	// ---- Maintenance ----
	sched := scheduler.New(ctx, logger)
	defer sched.Stop()
	if cfg.Audit.RetentionDays > 0 && cfg.Audit.PruneInterval > 0 {
		retention := time.Duration(cfg.Audit.RetentionDays) * 24 * time.Hour
		sched.AddTicker("audit-prune", cfg.Audit.PruneInterval, auditSvc.PruneTask(retention))
	}

	// ---- Rewards ----
	granter, err := reward.New(cfg.Reward, db, logger)
	if err != nil {
		logger.Fatal("reward granter", zap.Error(err))
	}
	ledger, _ := granter.(*reward.Ledger)

	// ---- Quests ----
	questSvc := quest.NewService(db, quest.Options{
		Granter:  granter,
		Cache:    store.Cache,
		PubSub:   store.PubSub,
		Audit:    auditSvc,
		Picker:   quest.NewRandomPicker(cfg.Quest.Seed),
		LockTTL:  cfg.Quest.LockTTL,
		LockWait: cfg.Quest.LockWait,
	}, logger)

	router := api.NewRouter(ctx, api.RouterConfig{
		Config: cfg,
		Quests: apirest.NewQuestHandler(questSvc, logger),
		Admin:  apirest.NewAdminHandler(questSvc, ledger, logger),
		Events: sse.NewHandler(store.PubSub, logger),
		Logger: logger,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("server shutting down")
		return srv.Shutdown(sctx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("server", zap.Error(err))
	}
}

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

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/tutoring-scheduler/api/swagger"
	"github.com/noah-isme/tutoring-scheduler/internal/handler"
	"github.com/noah-isme/tutoring-scheduler/internal/models"
	"github.com/noah-isme/tutoring-scheduler/internal/repository"
	"github.com/noah-isme/tutoring-scheduler/internal/rosterfile"
	"github.com/noah-isme/tutoring-scheduler/internal/service"
	"github.com/noah-isme/tutoring-scheduler/pkg/cache"
	"github.com/noah-isme/tutoring-scheduler/pkg/config"
	"github.com/noah-isme/tutoring-scheduler/pkg/database"
	"github.com/noah-isme/tutoring-scheduler/pkg/logger"
	corsmiddleware "github.com/noah-isme/tutoring-scheduler/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/tutoring-scheduler/pkg/middleware/requestid"
)

// @title Tutoring Scheduler API
// @version 1.0.0
// @description Conflict adjustment workflow for the tutoring matching engine
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()

	var db *sqlx.DB
	if cfg.Adjustments.RosterFromDB || cfg.Adjustments.PersistLedger {
		db, err = database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect database", zap.Error(err))
		}
		defer db.Close()
		if err := database.EnsureSchema(ctx, db); err != nil {
			logr.Fatal("failed to ensure schema", zap.Error(err))
		}
	}

	loadStarted := time.Now()
	roster, err := loadRoster(ctx, cfg.Adjustments, db)
	if db != nil && cfg.Adjustments.RosterFromDB {
		metrics.ObserveDBQuery("load_roster", time.Since(loadStarted))
	}
	if err != nil {
		logr.Fatal("failed to load roster", zap.Error(err))
	}

	matcher := service.NewMatchingService(service.MatchingConfig{
		MinCapacity: cfg.Scheduler.MinCapacity,
		Weights: service.ScoringWeights{
			Earliness:  cfg.Scheduler.EarlinessWeight,
			Weekday:    cfg.Scheduler.WeekdayBonus,
			Lunch:      cfg.Scheduler.LunchPenalty,
			Congestion: cfg.Scheduler.CongestionPenalty,
		},
	}, metrics, logr)

	session, result, err := service.StartSession(ctx, matcher, *roster, service.BootstrapConfig{
		DefaultMaxHours: cfg.Scheduler.DefaultMaxHours,
		Metrics:         metrics,
		Logger:          logr,
	})
	if err != nil {
		logr.Fatal("initial matching failed", zap.Error(err))
	}
	logr.Info("adjustment session ready",
		zap.String("session", cfg.Adjustments.SessionID),
		zap.Int("courses", len(result.Courses)),
		zap.Int("conflicts", len(result.Conflicts)),
	)

	defer service.AttachActivityLog(session, logr)()

	sinkCfg := service.SinkConfig{
		SessionID:  cfg.Adjustments.SessionID,
		Timeout:    cfg.Adjustments.ListenerTimeout,
		QueueSize:  cfg.Adjustments.LedgerQueueSize,
		MaxRetries: cfg.Adjustments.LedgerMaxRetries,
	}
	var (
		rosterRepo *repository.RosterRepository
		ledgerRepo *repository.ModificationRepository
	)
	if db != nil {
		rosterRepo = repository.NewRosterRepository(db)
		if cfg.Adjustments.PersistLedger {
			ledgerRepo = repository.NewModificationRepository(db)
			defer service.AttachQueuedLedgerPersistence(context.Background(), session, ledgerRepo, sinkCfg, logr)()
		}
	}

	var exportCache *service.ExportCache
	if cfg.Adjustments.ExportCacheEnable {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("export cache disabled: redis unavailable", zap.Error(err))
		} else {
			defer client.Close()
			repo := repository.NewCacheRepository(client, repository.DefaultCachePrefix, logr)
			exportCache = service.NewExportCache(service.NewCacheService(repo, metrics, cfg.Adjustments.ExportCacheTTL, logr, true), cfg.Adjustments.SessionID)
			defer service.AttachExportInvalidation(session, exportCache, sinkCfg)()
		}
	}

	tokens := service.NewTokenService(service.TokenConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		Expiry: cfg.JWT.Expiration,
	}, logr)

	// a nil *RosterRepository would reach the handler as a non-nil rosterWriter
	var adjustments *handler.AdjustmentHandler
	if rosterRepo != nil {
		adjustments = handler.NewAdjustmentHandler(session, service.NewExportService(logr), exportCache, rosterRepo)
	} else {
		adjustments = handler.NewAdjustmentHandler(session, service.NewExportService(logr), exportCache, nil)
	}
	if ledgerRepo != nil {
		adjustments.WithLedger(ledgerRepo, cfg.Adjustments.SessionID)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	handler.Register(r, handler.RouteConfig{
		APIPrefix:   cfg.APIPrefix,
		Validator:   tokens,
		Metrics:     metrics,
		Logger:      logr,
		IssueTokens: cfg.Env != config.EnvProduction,
	}, adjustments, handler.NewMetricsHandler(metrics, session), handler.NewAuthHandler(tokens))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func loadRoster(ctx context.Context, cfg config.AdjustmentsConfig, db *sqlx.DB) (*models.Roster, error) {
	switch {
	case cfg.RosterFromDB && db != nil:
		return repository.NewRosterRepository(db).LoadRoster(ctx)
	case cfg.RosterFile != "":
		return rosterfile.Load(cfg.RosterFile)
	default:
		return &models.Roster{}, nil
	}
}

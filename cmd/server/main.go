package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmdash/internal/config"
	"github.com/mamadbah2/farmdash/internal/repository/mongodb"
	"github.com/mamadbah2/farmdash/internal/repository/sheets"
	"github.com/mamadbah2/farmdash/internal/scheduler"
	"github.com/mamadbah2/farmdash/internal/server/handlers"
	"github.com/mamadbah2/farmdash/internal/server/router"
	dashboardsvc "github.com/mamadbah2/farmdash/internal/service/dashboard"
	reportingsvc "github.com/mamadbah2/farmdash/internal/service/reporting"
	"github.com/mamadbah2/farmdash/internal/session"
	"github.com/mamadbah2/farmdash/internal/tokenstore"
	"github.com/mamadbah2/farmdash/pkg/clients/farmapi"
	"github.com/mamadbah2/farmdash/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	tokens, err := openTokenStore(cfg.Session)
	if err != nil {
		baseLogger.Fatal("failed to open token store", zap.Error(err))
	}

	apiClient, err := farmapi.NewClient(cfg.API, tokens,
		farmapi.WithLogger(baseLogger.Named("client.farmapi")),
		farmapi.WithMetrics(farmapi.NewMetrics(registry)))
	if err != nil {
		baseLogger.Fatal("failed to init farm api client", zap.Error(err))
	}

	sess, err := session.New(apiClient, tokens, baseLogger.Named("svc.session"))
	if err != nil {
		baseLogger.Fatal("failed to init session", zap.Error(err))
	}
	if cfg.Session.ValidateOnStart && sess.State() == session.StatePendingValidation {
		validateCtx, cancel := context.WithTimeout(context.Background(), cfg.API.Timeout)
		if err := sess.Validate(validateCtx); err != nil {
			baseLogger.Warn("stored session could not be validated", zap.Error(err))
		}
		cancel()
	}

	var snapshotRepo mongodb.Repository
	if cfg.MongoDB.Enabled() {
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		snapshotRepo = mongoRepo
	} else {
		baseLogger.Warn("mongodb uri missing, dashboard snapshots will not be stored")
	}

	var sheetsRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		repo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheetsRepo = repo
	} else {
		baseLogger.Warn("google sheets not configured, export disabled")
	}

	dashboardSvc := dashboardsvc.NewService(sess, baseLogger.Named("svc.dashboard"))
	reportingSvc := reportingsvc.NewService(dashboardSvc, snapshotRepo, sheetsRepo, baseLogger.Named("svc.reporting"))

	engine := router.New(router.Handlers{
		Session:   handlers.NewSessionHandler(sess, baseLogger.Named("handlers.session")),
		Resources: handlers.NewResourceHandler(sess, baseLogger.Named("handlers.resources")),
		Dashboard: handlers.NewDashboardHandler(dashboardSvc, reportingSvc, baseLogger.Named("handlers.dashboard")),
	}, registry, baseLogger.Named("router"))

	if cfg.MongoDB.Enabled() || cfg.Sheets.Enabled() {
		sched, err := scheduler.NewScheduler(cfg.Reporting, reportingSvc, baseLogger.Named("scheduler"))
		if err != nil {
			baseLogger.Fatal("failed to init scheduler", zap.Error(err))
		}
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	} else {
		baseLogger.Info("no snapshot store configured, scheduler disabled")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.API.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("backend", cfg.API.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openTokenStore keeps tokens in a file when a path is configured, so a
// restart does not log the dashboard out.
func openTokenStore(cfg config.SessionConfig) (tokenstore.Store, error) {
	if cfg.TokenPath == "" {
		return tokenstore.NewMemoryStore(), nil
	}
	return tokenstore.NewFileStore(cfg.TokenPath)
}

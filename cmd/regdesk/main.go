package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/noah-isme/regdesk-api/api/swagger"
	"github.com/noah-isme/regdesk-api/internal/handler"
	"github.com/noah-isme/regdesk-api/internal/middleware"
	"github.com/noah-isme/regdesk-api/internal/service"
	"github.com/noah-isme/regdesk-api/pkg/config"
	"github.com/noah-isme/regdesk-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/regdesk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/regdesk-api/pkg/middleware/requestid"
)

const shutdownTimeout = 15 * time.Second

// @title Registration Desk API
// @version 1.0.0
// @description Front-desk participant registration, verification and hospitality
// @BasePath /api/v1
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	metrics := service.NewMetricsService()

	store, err := openBackend(ctx, cfg, metrics, logr)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", cfg.Desk.Backend, err)
	}
	defer store.Close(logr)

	audit := service.NewAuditService(store.audit, cfg.Audit, logr.Named("audit"))
	audit.Start(context.Background())

	registry := service.NewDeskRegistry(store.gate, metrics, logr.Named("desk"))
	tokens := service.NewDeskTokenService(cfg.DeskToken)
	front := service.NewFrontDesk(registry, tokens, audit, nil, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.Metrics(metrics))

	handler.Routes{
		Desks:        handler.NewDeskHandler(front),
		Participants: handler.NewParticipantHandler(front),
		Colleges:     handler.NewCollegeHandler(front),
		Metrics:      handler.NewMetricsHandler(metrics, registry, cfg.Desk.Backend),
		DeskAuth:     middleware.DeskAuth(tokens),
	}.Register(r, cfg.APIPrefix)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("backend", cfg.Desk.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return registry.RunSweeper(gctx, cfg.Desk.SweepInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		logr.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)

		registry.CloseAll()
		audit.Stop()
		return err
	})

	return g.Wait()
}

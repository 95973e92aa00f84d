package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/sreejitadass/ContentCrafter/internal/config"
	"github.com/sreejitadass/ContentCrafter/internal/db"
	"github.com/sreejitadass/ContentCrafter/internal/gemini"
	"github.com/sreejitadass/ContentCrafter/internal/http/api"
	"github.com/sreejitadass/ContentCrafter/internal/ratelimit"
	"github.com/sreejitadass/ContentCrafter/internal/workflow"
)

// main runs the server entrypoint and exits on unrecoverable errors.
func main() {
	if errRun := run(context.Background(), os.Args[1:]); errRun != nil {
		log.WithError(errRun).Error("server failed")
		os.Exit(1)
	}
}

// run parses flags, loads config, and serves until interrupted.
func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("contentcrafter", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "config file path (or env CONFIG_PATH)")
	listen := fs.String("listen", "", "listen address override (or env LISTEN_ADDR)")
	if errParse := fs.Parse(args); errParse != nil {
		return errParse
	}

	cfg, errLoad := config.Load(config.ResolveConfigPath(*cfgPath))
	if errLoad != nil {
		return errLoad
	}
	if addr := strings.TrimSpace(*listen); addr != "" {
		cfg.Listen = addr
	}

	conn, errOpen := db.Open(cfg.Database.DSN)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	log.WithField("dialect", db.DialectName(conn)).Info("database ready")

	if strings.TrimSpace(cfg.Gemini.APIKey) == "" {
		log.Warn("gemini api key not configured, generation requests will fail")
	}
	client := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.BaseURL, cfg.Gemini.Timeout)
	orchestrator := workflow.New(conn, client, cfg.Points.GenerationCost)

	limiter := ratelimit.NewManager(ratelimit.Settings{
		PerUser:       cfg.RateLimit.PerUser,
		RedisEnabled:  cfg.RateLimit.Redis.Enabled,
		RedisAddr:     cfg.RateLimit.Redis.Addr,
		RedisPassword: cfg.RateLimit.Redis.Password,
		RedisDB:       cfg.RateLimit.Redis.DB,
		RedisPrefix:   cfg.RateLimit.Redis.Prefix,
	}, nil, nil)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), api.RequestLogger())
	api.RegisterRoutes(engine, api.Deps{
		DB:            conn,
		Orchestrator:  orchestrator,
		Limiter:       limiter,
		JWTSecret:     cfg.JWT.Secret,
		InitialPoints: cfg.Points.Initial,
	})

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithField("listen", cfg.Listen).Info("server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case errServe := <-errCh:
		if errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", errServe)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
		return fmt.Errorf("shutdown: %w", errShutdown)
	}
	return nil
}

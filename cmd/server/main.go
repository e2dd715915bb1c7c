package main

import (
	"context"
	"crypto/rand"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Skotchmaster/modern_shop/internal/config"
	"github.com/Skotchmaster/modern_shop/internal/events"
	"github.com/Skotchmaster/modern_shop/internal/httpserver"
	"github.com/Skotchmaster/modern_shop/internal/models"
	"github.com/Skotchmaster/modern_shop/internal/search"
	"github.com/Skotchmaster/modern_shop/internal/service"
	"github.com/Skotchmaster/modern_shop/internal/tokens"
	"github.com/Skotchmaster/modern_shop/pkg/db"
	"github.com/Skotchmaster/modern_shop/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	handle, err := db.Open(initCtx, cfg.DatabaseURL)
	if err == nil {
		err = handle.Migrate(initCtx, models.All()...)
	}
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	logger.Info("db_ready", "dialect", handle.Dialect)

	jwtSecret := cfg.JWTSecret
	if len(jwtSecret) == 0 {
		jwtSecret = make([]byte, 32)
		if _, err := rand.Read(jwtSecret); err != nil {
			log.Fatalf("jwt secret: %v", err)
		}
		logger.Warn("jwt_secret_generated", "reason", "JWT_SECRET is empty, tokens will not survive a restart")
	}
	issuer := tokens.NewIssuer(jwtSecret, cfg.JWTTTL)

	publisher := events.New(cfg.KafkaBrokers)

	productSvc := &service.ProductService{Events: publisher}
	if cfg.ESURL != "" {
		esCtx, esCancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := search.NewClient(esCtx, search.Config{
			URL:      cfg.ESURL,
			Username: cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		esCancel()
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		productSvc.Index = client
	}

	e := httpserver.New(&httpserver.Deps{
		DB:     handle,
		Logger: logger,
		UserHandler: &httpserver.UserHTTP{
			Svc:    &service.UserService{Events: publisher},
			Tokens: issuer,
		},
		ProductHandler:   &httpserver.ProductHTTP{Svc: productSvc},
		Auth:             httpserver.NewAuth(issuer),
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		PermissiveCORS:   cfg.PermissiveCORS(),
		StaticDir:        cfg.StaticDir,
		TemplatesDir:     cfg.TemplatesDir,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http_server_started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if err := handle.Close(); err != nil {
		logger.Error("db_close_error", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Error("kafka_close_error", "error", err)
	}

	logger.Info("shutdown_complete")
}

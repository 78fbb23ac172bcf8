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
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	intconfig "transporte/internal/config"
	"transporte/internal/db"
	"transporte/internal/events"
	router "transporte/internal/http"
	"transporte/internal/http/handlers"
	"transporte/internal/metrics"
	"transporte/internal/repositories"
	"transporte/internal/services"
	"transporte/internal/utils"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	log, err := utils.InitLogger(env.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, ping, err := openStore(ctx, env)
	if err != nil {
		log.Fatal("storage init failed", zap.String("storage", env.Storage), zap.Error(err))
	}
	defer intconfig.CloseDB()

	bus := events.NewInProcessBus(log)
	defer func() { _ = bus.Close() }()
	if err := events.StartAudit(ctx, bus); err != nil {
		log.Fatal("audit subscriber failed", zap.Error(err))
	}

	m := metrics.Default()
	svc := services.New(services.Deps{
		Store:     store,
		Bus:       bus,
		Metrics:   m,
		JWTSecret: env.JWTSecret,
		JWTTTL:    env.JWTTTL,
	})
	if env.AdminUsername != "" && env.AdminPassword != "" {
		if err := svc.Auth.EnsureAdmin(ctx, env.AdminUsername, env.AdminPassword); err != nil {
			log.Fatal("admin seed failed", zap.Error(err))
		}
	}

	r := router.NewRouter(env, handlers.New(svc, ping), router.Options{
		Auth:     svc.Auth,
		Metrics:  m,
		Gatherer: prometheus.DefaultGatherer,
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", env.AppAddr), zap.String("storage", env.Storage))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
		return
	}
	log.Info("server stopped")
}

// openStore picks the storage backend. The returned ping is nil for memory.
func openStore(ctx context.Context, env intconfig.Env) (repositories.Store, func(context.Context) error, error) {
	if env.Storage == "memory" {
		return repositories.NewMemoryStore().Store(), nil, nil
	}
	conn, err := intconfig.ConnectDB(env.DBDSN)
	if err != nil {
		return repositories.Store{}, nil, err
	}
	if err := db.EnsureSchema(ctx, conn); err != nil {
		return repositories.Store{}, nil, err
	}
	return repositories.NewMySQLStore(conn), intconfig.PingDB, nil
}

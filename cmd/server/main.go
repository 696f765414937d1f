package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mwasobaddy/KeNHA-VATE-sub001/internal/server"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/migrations"
	"github.com/mwasobaddy/KeNHA-VATE-sub001/pkg/configuration"
)

func main() {
	conf := configuration.Use()
	logger := conf.Logger()

	if err := migrations.Up(conf.Database.ConnectionString()); err != nil {
		logger.WithError(err).Fatal("failed to apply migrations")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	pool, err := pgxpool.New(ctx, conf.Database.ConnectionString())
	cancel()
	if err != nil {
		logger.WithError(err).Fatal("failed to create connection pool")
	}
	defer pool.Close()

	srv := server.New(conf, pool)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", conf.Server.Address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	case <-runCtx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("graceful shutdown failed")
		}
	}
}

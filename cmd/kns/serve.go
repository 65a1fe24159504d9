package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/erazemk/kns/internal/api"
	"github.com/erazemk/kns/internal/notify"
)

func runServe(cmd *cobra.Command, configPath string) error {
	ctx := context.Background()
	a, err := openApp(ctx, cmd, configPath)
	if err != nil {
		return err
	}
	defer a.close()

	// A fresh database gets its first admin account on startup.
	created, password, err := bootstrapAdmin(ctx, a)
	if err != nil {
		return err
	}
	if created {
		printInitResult(os.Stdout, a.cfg.DB.DSN, a.cfg.AdminEmail, password)
	}

	jwtSecret, err := a.store.JWTSecret(ctx)
	if err != nil {
		return err
	}

	sockets := notify.NewSockets(a.hub)
	defer sockets.Close()

	if a.cfg.NATS.URL != "" {
		bridge, err := notify.ConnectNATS(a.cfg.NATS.URL, a.hub)
		if err != nil {
			return err
		}
		defer bridge.Close()
		log.Info().Str("url", a.cfg.NATS.URL).Msg("publishing changes to nats")
	}

	handler := api.NewRouter(api.Deps{
		Store:      a.store,
		Controller: a.controller,
		JWTSecret:  jwtSecret,
		Sockets:    sockets,
		Blobs:      a.dbBlobs,
		Metrics:    a.metrics,
	})

	server := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("server forced to shutdown")
		}
	}()

	log.Info().Str("addr", a.cfg.Addr).Msg("server started")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	log.Info().Msg("server stopped, closing database")
	return nil
}

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/erazemk/kns/internal/blob"
	"github.com/erazemk/kns/internal/config"
	"github.com/erazemk/kns/internal/db"
	"github.com/erazemk/kns/internal/inventory"
	"github.com/erazemk/kns/internal/logging"
	"github.com/erazemk/kns/internal/metrics"
	"github.com/erazemk/kns/internal/notify"
	"github.com/erazemk/kns/internal/store"
)

// app holds the services shared by every command.
type app struct {
	cfg        *config.Config
	db         *db.DB
	hub        *notify.Hub
	metrics    *metrics.Metrics
	dbBlobs    *blob.DBStorage
	store      *store.Store
	controller *inventory.Controller
	closeLog   func()
}

// openApp loads the configuration, sets up logging and opens the database
// with its schema in place.
func openApp(ctx context.Context, cmd *cobra.Command, configPath string) (*app, error) {
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}

	closeLog, err := logging.Setup(logging.Options{
		Path:   cfg.Log.Path,
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		closeLog()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	log.Info().Str("driver", cfg.DB.Driver).Msg("database ready")

	a := &app{
		cfg:      cfg,
		db:       database,
		hub:      notify.NewHub(),
		metrics:  metrics.New(),
		closeLog: closeLog,
	}

	var blobs blob.Storage
	switch cfg.Blob.Driver {
	case config.BlobS3:
		s3, err := blob.NewS3Storage(ctx, cfg.S3())
		if err != nil {
			a.close()
			return nil, err
		}
		blobs = s3
		log.Info().Str("bucket", cfg.Blob.S3.Bucket).Msg("storing uploads in s3")
	default:
		a.dbBlobs = blob.NewDBStorage(database, cfg.BaseURL+"/api/blobs")
		blobs = a.dbBlobs
	}

	a.store = store.New(database, a.hub, blobs, a.metrics)
	a.controller = inventory.New(a.store, a.metrics)
	return a, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		log.Error().Err(err).Msg("closing database")
	}
	a.closeLog()
}

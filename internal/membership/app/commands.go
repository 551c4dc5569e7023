package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/membership/internal/membership/domain"
	"github.com/aussiebroadwan/membership/internal/membership/metrics"
	"github.com/aussiebroadwan/membership/internal/membership/service"
	"github.com/aussiebroadwan/membership/internal/membership/store/drivers/sqlite"
	"github.com/aussiebroadwan/membership/pkg/cryptox"
)

// MigrationStatus is the schema state reported by the migrate command.
type MigrationStatus struct {
	Version uint
	Dirty   bool
}

// Migrate applies pending migrations, or rolls back down steps when down is
// positive, and reports the resulting schema version.
func Migrate(cfg Config, down int) (MigrationStatus, error) {
	logger := NewLogger(cfg)

	db, err := sqlite.NewStore(fmt.Sprintf("file:%s", cfg.DatabaseFile))
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if down > 0 {
		err = db.RollbackMigrations(down)
	} else {
		err = db.ApplyMigrations()
	}
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("migration failed: %w", err)
	}

	v, dirty, err := db.MigrationVersion()
	if err != nil {
		return MigrationStatus{}, err
	}
	logger.Info("migrations complete", slog.Uint64("version", uint64(v)), slog.Bool("dirty", dirty))
	return MigrationStatus{Version: v, Dirty: dirty}, nil
}

// Purge runs one housekeeping pass against the configured database.
func Purge(ctx context.Context, cfg Config) (service.PurgeReport, error) {
	logger := NewLogger(cfg)

	db, err := OpenStore(cfg, logger)
	if err != nil {
		return service.PurgeReport{}, err
	}
	defer db.Close()

	hk := &service.HousekeepingService{
		Store:     db,
		Logger:    logger,
		Metrics:   metrics.New(),
		Retention: cfg.PurgeRetention,
	}
	return hk.Purge(ctx, time.Now())
}

// Bootstrap creates the first captain from the command line using the
// configured bootstrap token.
func Bootstrap(ctx context.Context, cfg Config, data domain.BootstrapData) (string, error) {
	logger := NewLogger(cfg)
	cryptox.SetPepperPath(cfg.PepperFile)

	db, err := OpenStore(cfg, logger)
	if err != nil {
		return "", err
	}
	defer db.Close()

	bs := &service.BootstrapService{
		Store:       db,
		Token:       cfg.BootstrapToken,
		PhoneRegion: cfg.PhoneRegion,
	}
	return bs.Bootstrap(ctx, cfg.BootstrapToken, data)
}

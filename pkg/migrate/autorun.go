package migrate

import (
	"context"
	"fmt"

	"github.com/nuvemflow/orderdesk-backend/pkg/config"
	"github.com/nuvemflow/orderdesk-backend/pkg/db"
	"github.com/nuvemflow/orderdesk-backend/pkg/logger"
)

// MaybeRunDev applies the embedded migrations when running in dev with
// ORDERDESK_AUTO_MIGRATE set.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	dialect := Dialect(cfg.DB.Driver)
	meta := map[string]any{"env": cfg.App.Env, "source": "embedded", "dialect": dialect}
	ctx = logg.WithFields(ctx, meta)
	logg.Info(ctx, "migrations.autorun.start")

	if err := RunEmbedded(ctx, sqlDB, dialect, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "migrations.autorun.done")
	return nil
}

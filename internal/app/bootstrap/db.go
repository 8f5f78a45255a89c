// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/store/audit"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/indexes"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/validators"
	"go.uber.org/zap"
)

// EnsureSchema creates collections with their validators, then the indexes.
// Safe to run on every start.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	if err := validators.EnsureAll(ctx, db); err != nil {
		logger.Error("collection validators failed", zap.Error(err))
		return fmt.Errorf("validators: %w", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		logger.Error("index setup failed", zap.Error(err))
		return fmt.Errorf("indexes: %w", err)
	}
	if err := audit.New(db).EnsureIndexes(ctx); err != nil {
		logger.Error("audit index setup failed", zap.Error(err))
		return fmt.Errorf("audit indexes: %w", err)
	}

	logger.Info("schema ready", zap.String("database", db.Name()))
	return nil
}

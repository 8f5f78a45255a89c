// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/dalemusser/waffle/config"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{Upload: appCfg.UploadTimeout})

	dirs := []string{appCfg.UploadTempDir}
	if appCfg.StorageType == "local" {
		dirs = append(dirs, appCfg.StorageLocalPath)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("create directory failed", zap.String("dir", dir), zap.Error(err))
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

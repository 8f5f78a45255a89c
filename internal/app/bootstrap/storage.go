// internal/app/bootstrap/storage.go
package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/media"
	"go.uber.org/zap"
)

// newObjectStore builds the waffle storage backend selected by storage_type
// and wraps it for the media coordinator.
func newObjectStore(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (media.ObjectStore, error) {
	switch appCfg.StorageType {
	case "s3":
		backend, err := storage.NewS3(ctx, s3Config(appCfg))
		if err != nil {
			return nil, fmt.Errorf("s3 storage: %w", err)
		}
		logger.Info("using S3 object storage",
			zap.String("bucket", appCfg.StorageS3Bucket),
			zap.String("region", appCfg.StorageS3Region))
		return media.NewBlobStore(backend), nil
	case "local":
		backend, err := storage.NewLocal(storage.LocalConfig{
			BasePath: appCfg.StorageLocalPath,
			BaseURL:  appCfg.StorageLocalURL,
		})
		if err != nil {
			return nil, fmt.Errorf("local storage: %w", err)
		}
		logger.Info("using local object storage", zap.String("path", appCfg.StorageLocalPath))
		return media.NewBlobStore(backend), nil
	default:
		return nil, fmt.Errorf("unknown storage_type %q", appCfg.StorageType)
	}
}

func s3Config(appCfg AppConfig) storage.S3Config {
	cfg := storage.S3Config{
		Region:                   appCfg.StorageS3Region,
		Bucket:                   appCfg.StorageS3Bucket,
		Prefix:                   strings.Trim(appCfg.StorageS3Prefix, "/"),
		Endpoint:                 appCfg.StorageS3Endpoint,
		UsePathStyle:             appCfg.StorageS3Endpoint != "",
		AccessKeyID:              appCfg.StorageS3AccessKeyID,
		SecretAccessKey:          appCfg.StorageS3SecretAccessKey,
		BaseURL:                  strings.TrimSuffix(appCfg.StorageS3PublicURL, "/"),
		CloudFrontURL:            appCfg.StorageCFURL,
		CloudFrontKeyPairID:      appCfg.StorageCFKeyPairID,
		CloudFrontPrivateKeyPath: appCfg.StorageCFKeyPath,
	}
	// S3-compatible providers serve path-style from the endpoint.
	if cfg.BaseURL == "" && cfg.Endpoint != "" {
		cfg.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return cfg
}

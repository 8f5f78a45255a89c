// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/auditlog"
	"go.uber.org/zap"
)

// minSecretBytes is the shortest signing key accepted outside dev.
const minSecretBytes = 32

const devSecret = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for the NGO backend.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, access_token_secret, etc.
//   - Environment variables: NGOHUB_MONGO_URI, NGOHUB_ACCESS_TOKEN_SECRET, etc.
//   - Command-line flags: --mongo_uri, --access_token_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "ngohub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Access tokens
	{Name: "access_token_secret", Default: devSecret, Desc: "Access token signing key (at least 32 bytes in production)"},
	{Name: "access_token_expiry", Default: "24h", Desc: "Access token lifetime (e.g., 24h, 90m)"},
	{Name: "token_issuer", Default: "ngohub", Desc: "Issuer claim stamped on access tokens"},

	// File storage configuration
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads/media", Desc: "Local storage path for uploaded files"},
	{Name: "storage_local_url", Default: "/files/media", Desc: "URL prefix for serving local files"},

	// S3 configuration
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "media/", Desc: "S3 key prefix"},
	{Name: "storage_s3_endpoint", Default: "", Desc: "Endpoint for S3-compatible providers (blank for AWS)"},
	{Name: "storage_s3_access_key_id", Default: "", Desc: "S3 access key id (blank uses the default credential chain)"},
	{Name: "storage_s3_secret_access_key", Default: "", Desc: "S3 secret access key"},
	{Name: "storage_s3_public_url", Default: "", Desc: "Public base URL objects are served from"},
	{Name: "storage_cf_url", Default: "", Desc: "CloudFront distribution URL"},
	{Name: "storage_cf_keypair_id", Default: "", Desc: "CloudFront key pair ID"},
	{Name: "storage_cf_key_path", Default: "", Desc: "Path to CloudFront private key file"},

	// Upload intake
	{Name: "upload_temp_dir", Default: "./tmp/uploads", Desc: "Directory incoming files are spooled to"},
	{Name: "upload_max_bytes", Default: 25 << 20, Desc: "Maximum request body size for uploads"},
	{Name: "upload_concurrency", Default: 4, Desc: "Concurrent transfers per upload batch"},
	{Name: "upload_timeout", Default: "2m", Desc: "Deadline for one upload batch"},

	// Login throttling
	{Name: "login_rate_per_minute", Default: 10, Desc: "Login attempts allowed per client IP per minute"},
	{Name: "login_burst", Default: 5, Desc: "Login attempts allowed in a burst"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_resource", Default: "log", Desc: "Resource event logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, NGOHUB_* for app) and flags,
// merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "NGOHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		AccessTokenSecret: appValues.String("access_token_secret"),
		AccessTokenExpiry: appValues.Duration("access_token_expiry", 24*time.Hour),
		TokenIssuer:       appValues.String("token_issuer"),

		// File storage
		StorageType:      appValues.String("storage_type"),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		// S3
		StorageS3Region:          appValues.String("storage_s3_region"),
		StorageS3Bucket:          appValues.String("storage_s3_bucket"),
		StorageS3Prefix:          appValues.String("storage_s3_prefix"),
		StorageS3Endpoint:        appValues.String("storage_s3_endpoint"),
		StorageS3AccessKeyID:     appValues.String("storage_s3_access_key_id"),
		StorageS3SecretAccessKey: appValues.String("storage_s3_secret_access_key"),
		StorageS3PublicURL:       appValues.String("storage_s3_public_url"),
		StorageCFURL:             appValues.String("storage_cf_url"),
		StorageCFKeyPairID:       appValues.String("storage_cf_keypair_id"),
		StorageCFKeyPath:         appValues.String("storage_cf_key_path"),

		// Uploads
		UploadTempDir:     appValues.String("upload_temp_dir"),
		UploadMaxBytes:    int64(appValues.Int("upload_max_bytes")),
		UploadConcurrency: appValues.Int("upload_concurrency"),
		UploadTimeout:     appValues.Duration("upload_timeout", 2*time.Minute),

		// Login throttling
		LoginRatePerMinute: appValues.Int("login_rate_per_minute"),
		LoginBurst:         appValues.Int("login_burst"),

		// Audit logging
		AuditLogAuth:     appValues.String("audit_log_auth"),
		AuditLogResource: appValues.String("audit_log_resource"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.AccessTokenSecret == "" {
		return errors.New("access_token_secret is required")
	}
	if coreCfg.Env != "dev" {
		if len(appCfg.AccessTokenSecret) < minSecretBytes {
			return fmt.Errorf("access_token_secret must be at least %d bytes", minSecretBytes)
		}
		if appCfg.AccessTokenSecret == devSecret {
			return errors.New("access_token_secret is still the development default")
		}
	}
	if appCfg.AccessTokenExpiry <= 0 {
		return errors.New("access_token_expiry must be positive")
	}

	switch appCfg.StorageType {
	case "local":
		if appCfg.StorageLocalPath == "" {
			return errors.New("storage_local_path is required when storage_type is 'local'")
		}
	case "s3":
		if appCfg.StorageS3Region == "" || appCfg.StorageS3Bucket == "" {
			return errors.New("storage_s3_region and storage_s3_bucket are required when storage_type is 's3'")
		}
		if (appCfg.StorageS3AccessKeyID == "") != (appCfg.StorageS3SecretAccessKey == "") {
			return errors.New("storage_s3_access_key_id and storage_s3_secret_access_key must be set together")
		}
		if (appCfg.StorageCFKeyPairID == "") != (appCfg.StorageCFKeyPath == "") {
			return errors.New("storage_cf_keypair_id and storage_cf_key_path must be set together")
		}
		if appCfg.StorageCFKeyPairID != "" && appCfg.StorageCFURL == "" {
			return errors.New("storage_cf_url is required when CloudFront signing is configured")
		}
	default:
		return fmt.Errorf("storage_type must be 'local' or 's3', got %q", appCfg.StorageType)
	}

	if appCfg.UploadMaxBytes <= 0 {
		return errors.New("upload_max_bytes must be positive")
	}
	if appCfg.UploadConcurrency <= 0 {
		return errors.New("upload_concurrency must be positive")
	}
	if appCfg.LoginRatePerMinute <= 0 || appCfg.LoginBurst <= 0 {
		return errors.New("login_rate_per_minute and login_burst must be positive")
	}

	for key, mode := range map[string]string{
		"audit_log_auth":     appCfg.AuditLogAuth,
		"audit_log_resource": appCfg.AuditLogResource,
	} {
		switch mode {
		case auditlog.ModeAll, auditlog.ModeDB, auditlog.ModeLog, auditlog.ModeOff:
		default:
			return fmt.Errorf("%s must be one of all, db, log, off; got %q", key, mode)
		}
	}

	return nil
}

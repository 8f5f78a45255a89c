// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, logging, CORS, body limits); this
// struct carries everything the NGO backend itself needs.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Access tokens
	AccessTokenSecret string        // HMAC key for signing access tokens
	AccessTokenExpiry time.Duration // Lifetime of an issued token
	TokenIssuer       string        // "iss" claim

	// Remote object storage
	StorageType      string // "local" or "s3"
	StorageLocalPath string // Directory for local objects (e.g., "./uploads/media")
	StorageLocalURL  string // URL prefix local objects are served under (e.g., "/files/media")

	// S3 configuration (only used if StorageType is "s3")
	StorageS3Region          string
	StorageS3Bucket          string
	StorageS3Prefix          string
	StorageS3Endpoint        string // blank for AWS
	StorageS3AccessKeyID     string
	StorageS3SecretAccessKey string
	StorageS3PublicURL       string
	StorageCFURL             string // CloudFront distribution URL
	StorageCFKeyPairID       string // CloudFront key pair ID
	StorageCFKeyPath         string // Path to CloudFront private key file

	// Upload intake
	UploadTempDir     string
	UploadMaxBytes    int64
	UploadConcurrency int
	UploadTimeout     time.Duration

	// Login throttling
	LoginRatePerMinute int
	LoginBurst         int

	// Audit logging
	AuditLogAuth     string // 'all', 'db', 'log', or 'off'
	AuditLogResource string
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"smart-file-manager/internal/shared/telemetry"
)

const (
	DefaultBucket        = "smart-file-manager-bucket"
	DefaultMetadataTable = "FileMetadata"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	ObjectStoreType  string
	LocalStoreDir    string
	LocalBlobBaseURL string
	LocalBlobSecret  string
	AWSRegion        string
	S3Bucket         string
	S3Endpoint       string
	S3AccessKey      string
	S3SecretKey      string
	S3ForcePathStyle bool
	SSEKMSKeyID      string

	MetadataStoreType string
	MetadataTable     string
	DynamoDBEndpoint  string
	DatabaseURL       string
	SQLitePath        string

	ValkeyAddr       string
	ValkeyPassword   string
	MetadataCacheTTL time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	port := getEnv("PORT", "8080")

	cfg := Config{
		Port:              port,
		Env:               env,
		CORSAllowOrigin:   splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		ObjectStoreType:   normalizeStoreType(getEnv("OBJECT_STORE", "s3")),
		LocalStoreDir:     getEnv("LOCAL_STORE_DIR", "./data"),
		LocalBlobBaseURL:  getEnv("LOCAL_BLOB_BASE_URL", "http://localhost:"+strings.TrimPrefix(port, ":")),
		LocalBlobSecret:   getEnv("LOCAL_BLOB_SECRET", ""),
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:          getEnv("S3_BUCKET", DefaultBucket),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3AccessKey:       getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:       getEnv("S3_SECRET_KEY", ""),
		S3ForcePathStyle:  getEnvBool("S3_FORCE_PATH_STYLE", false),
		SSEKMSKeyID:       getEnv("SSE_KMS_KEY_ID", ""),
		MetadataStoreType: normalizeMetadataStore(getEnv("METADATA_STORE", "dynamodb")),
		MetadataTable:     getEnv("METADATA_TABLE", DefaultMetadataTable),
		DynamoDBEndpoint:  getEnv("DYNAMODB_ENDPOINT", ""),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		SQLitePath:        getEnv("SQLITE_PATH", "./data/files.db"),
		ValkeyAddr:        os.Getenv("VALKEY_ADDR"),
		ValkeyPassword:    os.Getenv("VALKEY_PASSWORD"),
		MetadataCacheTTL:  getEnvDuration("METADATA_CACHE_TTL", time.Hour),
	}

	if cfg.MetadataStoreType == "postgres" && cfg.DatabaseURL == "" {
		telemetry.Warn("config.database_url.missing", map[string]any{"metadata_store": cfg.MetadataStoreType})
	}
	if env == "production" && cfg.ObjectStoreType == "local" {
		telemetry.Warn("config.local_store.production", map[string]any{"dir": cfg.LocalStoreDir})
	}

	return cfg
}

// IsDevLike reports whether the environment tolerates in-memory fallbacks.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		telemetry.Warn("config.env.invalid", map[string]any{"key": key, "err": err.Error()})
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		telemetry.Warn("config.env.invalid", map[string]any{"key": key, "value": raw})
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "local", "fs":
		return "local"
	default:
		return "s3"
	}
}

func normalizeMetadataStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg":
		return "postgres"
	case "memory", "mem":
		return "memory"
	case "sqlite", "sqlite3":
		return "sqlite"
	default:
		return "dynamodb"
	}
}

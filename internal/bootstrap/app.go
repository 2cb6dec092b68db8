package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gin-gonic/gin"

	"smart-file-manager/internal/files"
	"smart-file-manager/internal/shared/awsx"
	"smart-file-manager/internal/shared/cache"
	"smart-file-manager/internal/shared/config"
	"smart-file-manager/internal/shared/server"
	"smart-file-manager/internal/shared/storage/db"
	"smart-file-manager/internal/shared/storage/object"
	localstore "smart-file-manager/internal/shared/storage/object/local"
	s3store "smart-file-manager/internal/shared/storage/object/s3"
	"smart-file-manager/internal/shared/storage/sqlite"
	"smart-file-manager/internal/shared/telemetry"
)

// App holds the long-lived clients and handlers for one process or Lambda container.
type App struct {
	Config       config.Config
	Router       *gin.Engine
	DB           *sql.DB
	Cache        *cache.Valkey
	Blobs        object.BlobStore
	FilesRepo    files.Repo
	FilesService *files.Service
	FilesHandler *files.Handler
}

// Build constructs backend clients once and wires the router.
func Build(cfg config.Config) (*App, error) {
	return BuildContext(context.Background(), cfg)
}

// BuildContext is Build with a caller-supplied context for client setup.
func BuildContext(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	if strings.TrimSpace(cfg.MetadataStoreType) == "" {
		cfg.MetadataStoreType = "memory"
	}

	var awsCfg *aws.Config
	loadAWS := func() (aws.Config, error) {
		if awsCfg != nil {
			return *awsCfg, nil
		}
		loaded, err := awsx.LoadConfig(ctx, awsx.Options{
			Region:    cfg.AWSRegion,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return aws.Config{}, err
		}
		awsCfg = &loaded
		return loaded, nil
	}

	app := &App{Config: cfg}

	blobs, blobHandler, err := buildBlobStore(cfg, loadAWS)
	if err != nil {
		return nil, err
	}
	app.Blobs = blobs

	repo, sqlDB, err := buildRepo(ctx, cfg, loadAWS)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB

	metaCache, err := buildCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if metaCache != nil {
		app.Cache = metaCache
		repo = files.NewCachedRepo(repo, metaCache)
	}
	app.FilesRepo = repo

	app.FilesService = files.NewService(app.Blobs, app.FilesRepo)
	app.FilesHandler = files.NewHandler(app.FilesService)
	app.Router = server.NewRouter(server.RouterDeps{
		Config:      cfg,
		FileHandler: app.FilesHandler,
		BlobHandler: blobHandler,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":            cfg.Env,
		"object_store":   cfg.ObjectStoreType,
		"metadata_store": cfg.MetadataStoreType,
		"metadata_cache": app.Cache != nil,
	})
	return app, nil
}

func buildBlobStore(cfg config.Config, loadAWS func() (aws.Config, error)) (object.BlobStore, gin.HandlerFunc, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		awsCfg, err := loadAWS()
		if err != nil {
			return nil, nil, err
		}
		store, err := s3store.New(awsCfg, s3store.Options{
			Bucket:       cfg.S3Bucket,
			Endpoint:     cfg.S3Endpoint,
			UsePathStyle: cfg.S3ForcePathStyle,
			KMSKeyID:     cfg.SSEKMSKeyID,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	default:
		store := localstore.New(cfg.LocalStoreDir, cfg.LocalBlobBaseURL, cfg.LocalBlobSecret)
		return store, store.Handler(), nil
	}
}

func buildRepo(ctx context.Context, cfg config.Config, loadAWS func() (aws.Config, error)) (files.Repo, *sql.DB, error) {
	switch cfg.MetadataStoreType {
	case "dynamodb":
		awsCfg, err := loadAWS()
		if err != nil {
			return nil, nil, err
		}
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if endpoint := strings.TrimSpace(cfg.DynamoDBEndpoint); endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
			}
		})
		return files.NewDynamoRepo(client, cfg.MetadataTable), nil, nil
	case "postgres":
		sqlDB, err := buildDB(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		if sqlDB == nil {
			return files.NewMemoryRepo(), nil, nil
		}
		return &files.PGRepo{DB: sqlDB}, sqlDB, nil
	case "sqlite":
		sqlDB, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return &files.SQLiteRepo{DB: sqlDB}, sqlDB, nil
	default:
		return files.NewMemoryRepo(), nil, nil
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db.skipped", map[string]any{"reason": "DATABASE_URL empty; using in-memory metadata"})
			return nil, nil
		}
		return nil, fmt.Errorf("METADATA_STORE=postgres requires DATABASE_URL")
	}

	sqlDB, err := db.Open(ctx, cfg.DatabaseURL, db.RuntimeRole())
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db.fallback", map[string]any{"err": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildCache(ctx context.Context, cfg config.Config) (*cache.Valkey, error) {
	if strings.TrimSpace(cfg.ValkeyAddr) == "" {
		return nil, nil
	}
	c, err := cache.NewValkey(ctx, cache.Options{
		Addr:     cfg.ValkeyAddr,
		Password: cfg.ValkeyPassword,
		Prefix:   "filemeta:",
		TTL:      cfg.MetadataCacheTTL,
	})
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.cache.skipped", map[string]any{"err": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// Close releases database and cache connections.
func (a *App) Close() {
	if a.Cache != nil {
		a.Cache.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

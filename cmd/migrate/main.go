package main

// Apply the file_metadata migrations:
//   DATABASE_URL=postgres://... go run ./cmd/migrate

import (
	"context"
	"os"

	"smart-file-manager/internal/shared/config"
	"smart-file-manager/internal/shared/storage/db"
	"smart-file-manager/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	sqlDB, err := db.Open(ctx, cfg.DatabaseURL, db.RoleMigrate)
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
	names, _ := db.MigrationNames()
	telemetry.Info("migrate.done", map[string]any{"migrations": names})
}

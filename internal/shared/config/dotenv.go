package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"

	"smart-file-manager/internal/shared/telemetry"
)

// loadEnvFiles applies the given .env files when present.
// Variables already set in the process environment win.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			telemetry.Warn("config.env_file.invalid", map[string]any{"path": path, "err": err.Error()})
		}
	}
}

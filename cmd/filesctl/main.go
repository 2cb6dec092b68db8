package main

import (
	"fmt"
	"os"

	"smart-file-manager/internal/shared/config"
	"smart-file-manager/internal/shared/telemetry"
)

func main() {
	telemetry.SetOutput(os.Stderr)
	cfg := config.Load()

	if err := newRootCmd(cfg, os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

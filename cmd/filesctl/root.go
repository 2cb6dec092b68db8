package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"smart-file-manager/internal/bootstrap"
	"smart-file-manager/internal/files"
	"smart-file-manager/internal/shared/config"
)

// serviceFactory builds the files service; tests swap it for an in-memory one.
type serviceFactory func(ctx context.Context, cfg config.Config) (*files.Service, error)

func buildService(ctx context.Context, cfg config.Config) (*files.Service, error) {
	app, err := bootstrap.BuildContext(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return app.FilesService, nil
}

func newRootCmd(cfg config.Config, out io.Writer) *cobra.Command {
	return newRootCmdWith(cfg, out, buildService)
}

func newRootCmdWith(cfg config.Config, out io.Writer, factory serviceFactory) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:           "filesctl",
		Short:         "Upload files and mint download links against the configured backends",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")

	cmd.AddCommand(
		newUploadCmd(cfg, factory, &jsonOutput),
		newURLCmd(cfg, factory, &jsonOutput),
	)
	return cmd
}

func writeResult(cmd *cobra.Command, jsonOutput bool, payload any, plain string) error {
	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		return enc.Encode(payload)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), plain)
	return err
}

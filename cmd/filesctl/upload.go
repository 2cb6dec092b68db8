package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"smart-file-manager/internal/files"
	"smart-file-manager/internal/shared/config"
)

func newUploadCmd(cfg config.Config, factory serviceFactory, jsonOutput *bool) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Store a local file and print its file id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := os.Stat(args[0])
			if err != nil {
				return err
			}
			if info.Size() > files.MaxUploadBytes {
				return fmt.Errorf("%s: file size exceeds 10MB limit", args[0])
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = filepath.Base(args[0])
			}

			svc, err := factory(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			rec, err := svc.Upload(cmd.Context(), name, data)
			if err != nil {
				return err
			}
			return writeResult(cmd, *jsonOutput, files.UploadResponse{FileID: rec.ID}, rec.ID)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "object name to store under (default: base name of <path>)")

	return cmd
}

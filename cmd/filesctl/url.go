package main

import (
	"github.com/spf13/cobra"

	"smart-file-manager/internal/files"
	"smart-file-manager/internal/shared/config"
)

func newURLCmd(cfg config.Config, factory serviceFactory, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "url <fileId>",
		Short: "Print a download URL valid for five minutes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := factory(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			url, err := svc.DownloadURL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeResult(cmd, *jsonOutput, files.DownloadResponse{URL: url}, url)
		},
	}
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/tanq16/redl/internal/downloader"
	"github.com/tanq16/redl/internal/downloaders/s3"
	"github.com/tanq16/redl/internal/output"
)

func newGetCmd() *cobra.Command {
	var filename string

	cmd := &cobra.Command{
		Use:     "get [URL] [--output FILENAME]",
		Short:   "Download a single file via HTTP/HTTPS (or a presigned s3:// object)",
		Aliases: []string{"http"},
		Args:    cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			cfg := baseConfig()
			cfg.Filename = filename
			if err := runDownload(ctx, args[0], cfg); err != nil {
				output.PrintError(err.Error())
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVarP(&filename, "output", "o", "", "Output file name (inferred from the URL if not provided)")
	return cmd
}

func runDownload(ctx context.Context, url string, cfg downloader.Config) error {
	if s3.IsS3URL(url) {
		resolved, name, err := presignS3(ctx, url)
		if err != nil {
			return err
		}
		if cfg.Filename == "" {
			cfg.Filename = name
		}
		url = resolved
	}
	output.PrintPending(fmt.Sprintf("Downloading %s", redactURL(url)))
	start := time.Now()
	path, err := downloader.Download(ctx, url, cfg)
	if cfg.ShowProgress {
		output.ClearLine()
	}
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	var size int64
	if info, statErr := os.Stat(path); statErr == nil {
		size = info.Size()
	}
	output.PrintSuccess(output.Summary(path, size, time.Since(start)))
	return nil
}

func presignS3(ctx context.Context, url string) (string, string, error) {
	_, key, err := s3.ParseS3URL(url)
	if err != nil {
		return "", "", err
	}
	presigner, err := s3.NewPresigner(ctx, s3Profile, s3.DefaultExpiry)
	if err != nil {
		return "", "", err
	}
	resolved, err := presigner.Presign(ctx, url)
	if err != nil {
		return "", "", err
	}
	return resolved, s3.ObjectName(key), nil
}

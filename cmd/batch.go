package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tanq16/redl/internal/downloader"
	"github.com/tanq16/redl/internal/output"
	"github.com/tanq16/redl/internal/utils"
)

type batchResult struct {
	succeeded int
	failed    []string
	skipped   int
}

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [YAML_FILE]",
		Short: "Download the links listed in a YAML file, one after another",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			entries, err := utils.ReadDownloadList(args[0])
			if err != nil {
				output.PrintError(fmt.Sprintf("Failed to read URL list file: %v", err))
				os.Exit(1)
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			result := runBatch(ctx, entries, baseConfig(), runDownload)
			if result.skipped > 0 {
				output.PrintWarning(fmt.Sprintf("Interrupted, skipped %d remaining link(s)", result.skipped))
			}
			output.PrintHeader("\nBatch Summary")
			headline, details := batchSummary(result)
			output.PrintInfo(headline)
			for _, line := range details {
				fmt.Println("  " + line)
			}
			if len(result.failed) > 0 {
				os.Exit(1)
			}
		},
	}
	return cmd
}

// runBatch downloads entries in order and stops early once ctx is done.
func runBatch(ctx context.Context, entries []utils.DownloadEntry, base downloader.Config,
	run func(context.Context, string, downloader.Config) error) batchResult {
	var result batchResult
	for i, entry := range entries {
		if ctx.Err() != nil {
			result.skipped = len(entries) - i
			break
		}
		cfg := entryConfig(base, entry)
		log.Debug().Str("op", "cmd/batch").Msgf("Entry %d/%d: %s", i+1, len(entries), redactURL(entry.URL))
		if err := run(ctx, entry.URL, cfg); err != nil {
			output.PrintError(err.Error())
			result.failed = append(result.failed, entry.URL)
			continue
		}
		result.succeeded++
	}
	return result
}

func entryConfig(base downloader.Config, entry utils.DownloadEntry) downloader.Config {
	cfg := base
	if entry.OutputPath != "" {
		if dir := filepath.Dir(entry.OutputPath); dir != "." {
			cfg.SavePath = filepath.Join(cfg.SavePath, dir)
		}
		cfg.Filename = filepath.Base(entry.OutputPath)
	}
	return cfg
}

func batchSummary(result batchResult) (string, []string) {
	headline := fmt.Sprintf("%d succeeded, %d failed", result.succeeded, len(result.failed))
	if result.skipped > 0 {
		headline += fmt.Sprintf(", %d skipped", result.skipped)
	}
	var details []string
	for _, link := range result.failed {
		details = append(details, output.FDetail(output.StyleSymbols["fail"]+" "+redactURL(link)))
	}
	return headline, details
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citation-engine/internal/collect"
	"github.com/pdiddy/citation-engine/pkg/types"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Download each author's publications into per-author CSVs",
	Long: `Collect reads authors.csv, walks every author's works through the
OpenAlex API with cursor pagination, and streams one CSV per author into
the output directory. Authors with an existing CSV are skipped unless
--force is set.`,
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().String("authors", "files/authors.csv", "input authors CSV")
	collectCmd.Flags().String("output-dir", "files/alex_papers", "directory receiving per-author CSVs")
	collectCmd.Flags().Int("per-page", 0, "OpenAlex page size (default and max 200)")
	collectCmd.Flags().Int("year-min", 0, "drop works published before this year (0 = all)")
	collectCmd.Flags().Float64("rps", 0, "client-side requests per second (default 5)")
	collectCmd.Flags().Bool("force", false, "re-collect authors whose CSV already exists")
	collectCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")

	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	authorsPath, _ := cmd.Flags().GetString("authors")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	perPage, _ := cmd.Flags().GetInt("per-page")
	yearMin, _ := cmd.Flags().GetInt("year-min")
	rps, _ := cmd.Flags().GetFloat64("rps")
	force, _ := cmd.Flags().GetBool("force")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	if yearMin == 0 {
		yearMin = viper.GetInt("collect.year_min")
	}

	cfg := types.CollectConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
			Mailto:    secretDefault("openalex-email", viper.GetString("collect.mailto")),
		},
		OutputDir:         outputDir,
		PerPage:           perPage,
		YearMin:           yearMin,
		RequestsPerSecond: rps,
		Force:             force,
	}

	authors, err := collect.ReadAuthors(authorsPath)
	if err != nil {
		return err
	}
	if len(authors) == 0 {
		return fmt.Errorf("no authors found in %s", authorsPath)
	}

	client := &http.Client{Timeout: cfg.Timeout}
	summary := collect.CollectBatch(context.Background(), client, authors, cfg, os.Stdout)

	if summary.Failed > 0 {
		return fmt.Errorf("%d author(s) failed collection", summary.Failed)
	}
	return nil
}

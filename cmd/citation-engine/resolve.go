package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citation-engine/internal/resolve"
	"github.com/pdiddy/citation-engine/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "citation-engine/0.1"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Match a committee roster against OpenAlex author profiles",
	Long: `Resolve reads a roster CSV (Name, Role, Affiliation, Country), maps each
affiliation to an OpenAlex institution, searches authors constrained to
that institution, and writes the confident matches to authors.csv.
Rows without a confident match are reported and skipped.`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().String("roster", "files/pc_members.csv", "input roster CSV")
	resolveCmd.Flags().String("output", "files/authors.csv", "output authors CSV")
	resolveCmd.Flags().Float64("min-confidence", 0, "match confidence threshold (default 0.52)")
	resolveCmd.Flags().Int("max-candidates", 0, "author candidates fetched per name (default 25)")
	resolveCmd.Flags().Duration("delay", 500*time.Millisecond, "pause between API calls")
	resolveCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	rosterPath, _ := cmd.Flags().GetString("roster")
	outputPath, _ := cmd.Flags().GetString("output")
	minConfidence, _ := cmd.Flags().GetFloat64("min-confidence")
	maxCandidates, _ := cmd.Flags().GetInt("max-candidates")
	delay, _ := cmd.Flags().GetDuration("delay")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	if minConfidence == 0 {
		minConfidence = viper.GetFloat64("resolve.min_confidence")
	}

	cfg := types.ResolveConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
			Mailto:    secretDefault("openalex-email", viper.GetString("resolve.mailto")),
		},
		MaxCandidates: maxCandidates,
		MinConfidence: minConfidence,
		RequestDelay:  delay,
	}

	members, err := resolve.ReadRoster(rosterPath)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		return fmt.Errorf("roster %s has no rows", rosterPath)
	}

	client := &http.Client{Timeout: cfg.Timeout}
	profiles, summary := resolve.ResolveBatch(context.Background(), client, members, cfg, os.Stdout)

	if err := resolve.WriteProfiles(outputPath, profiles); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "wrote %d profiles to %s\n", len(profiles), outputPath)

	if summary.Failed > 0 {
		return fmt.Errorf("%d roster row(s) failed resolution", summary.Failed)
	}
	return nil
}

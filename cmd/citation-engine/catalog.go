// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-engine/internal/catalog"
	"github.com/pdiddy/citation-engine/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the searchable candidate catalog (ingest, search, export)",
	Long: `Catalog maintains a local SQLite database over the collected corpus so
candidates can be inspected by keyword. Use subcommands to ingest the
per-author CSVs, search them, or export the catalog.`,
}

// --- ingest subcommand ---

var catalogIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index the per-author CSVs into the catalog database",
	Long: `Ingest reads the corpus directory into a SQLite database with FTS5
indexing over titles and abstracts. Files unchanged since the last run
are skipped.`,
	RunE: runCatalogIngest,
}

func runCatalogIngest(cmd *cobra.Command, args []string) error {
	cfg, corpusDir := catalogConfig(cmd)

	store, err := catalog.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), corpusDir, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d corpus file(s) failed ingestion", summary.Failed)
	}
	return nil
}

// --- search subcommand ---

var catalogSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the catalog with full-text search and filters",
	Long: `Search queries the catalog using FTS5 full-text search over titles and
abstracts, optionally filtered by source file and publication year.`,
	RunE: runCatalogSearch,
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	cfg, _ := catalogConfig(cmd)
	store, err := catalog.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := searchOptsFromFlags(cmd, args)
	if opts.Query == "" && opts.SourceCSV == "" && opts.YearMin == 0 {
		return fmt.Errorf("query or filter required: provide a search query, --source, or --year-min")
	}

	results, err := store.Search(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []catalog.SearchResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-60s  %-6s  %-8s  %s\n",
		"Rank", "Title", "Year", "Cited", "Source")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for i, r := range results {
		title := r.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-60s  %-6d  %-8d  %s\n",
			i+1, title, r.Year, r.CitationCount, r.SourceCSV)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog to YAML or JSON",
	Long: `Export writes the full catalog (or a filtered subset) to a YAML or JSON
file. Supports the same filter flags as search for partial exports.`,
	RunE: runCatalogExport,
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("output")

	cfg, _ := catalogConfig(cmd)
	store, err := catalog.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := searchOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if outPath == "" {
			outPath = "files/index/export.yaml"
		}
		if err := store.ExportYAML(context.Background(), opts, outPath); err != nil {
			return err
		}
	case "json":
		if outPath == "" {
			outPath = "files/index/export.json"
		}
		if err := store.ExportJSON(context.Background(), opts, outPath); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	fmt.Println("Exported to", outPath)
	return nil
}

// --- shared helpers ---

func catalogConfig(cmd *cobra.Command) (types.CatalogConfig, string) {
	indexDir, _ := cmd.Flags().GetString("index-dir")
	if indexDir == "" {
		indexDir = "files/index"
	}
	corpusDir, _ := cmd.Flags().GetString("corpus-dir")
	if corpusDir == "" {
		corpusDir = "files/alex_papers"
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")

	cfg := types.CatalogConfig{
		IndexDir:   indexDir,
		MaxResults: maxResults,
	}
	return cfg, corpusDir
}

func searchOptsFromFlags(cmd *cobra.Command, args []string) catalog.SearchOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	source, _ := cmd.Flags().GetString("source")
	yearMin, _ := cmd.Flags().GetInt("year-min")
	limit, _ := cmd.Flags().GetInt("limit")

	return catalog.SearchOptions{
		Query:      queryText,
		SourceCSV:  source,
		YearMin:    yearMin,
		MaxResults: limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	catalogCmd.PersistentFlags().String("index-dir", "files/index", "directory containing papers.db")
	catalogCmd.PersistentFlags().String("corpus-dir", "files/alex_papers", "corpus directory of per-author CSVs")
	catalogCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// Search flags.
	catalogSearchCmd.Flags().String("query", "", "full-text search query")
	catalogSearchCmd.Flags().String("source", "", "filter by source CSV filename")
	catalogSearchCmd.Flags().Int("year-min", 0, "drop papers published before this year")
	catalogSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	catalogSearchCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	catalogExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	catalogExportCmd.Flags().String("output", "", "export file path (default files/index/export.<format>)")
	catalogExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	catalogExportCmd.Flags().String("source", "", "filter by source CSV for partial export")
	catalogExportCmd.Flags().Int("year-min", 0, "year floor for partial export")
	catalogExportCmd.Flags().Int("limit", 0, "maximum rows to export (0 = all)")

	// Wire subcommands.
	catalogCmd.AddCommand(catalogIngestCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
	catalogCmd.AddCommand(catalogExportCmd)

	rootCmd.AddCommand(catalogCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/felixleeca/recalllens/internal/catalog"
	"github.com/felixleeca/recalllens/internal/feedfetch"
	"github.com/felixleeca/recalllens/internal/secrets"
	"github.com/felixleeca/recalllens/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the local recall catalog (import, query, export)",
	Long: `Catalog manages a local SQLite catalog built from normalized recall
feed files. Use subcommands to import feeds, query records, or export.`,
}

// --- fetch subcommand ---

var catalogFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download recall data from the agency APIs into feed files",
	Long: `Fetch downloads recall records from the official FDA, FSIS, and CPSC
APIs and writes one feed file per source under <catalog-dir>/feeds/. Run
import afterwards to index the fetched feeds. An openFDA API key raises the
FDA rate limit; put it in .secrets/openfda-api-key or the config file.`,
	RunE: runCatalogFetch,
}

func runCatalogFetch(cmd *cobra.Command, args []string) error {
	catalogDir, _ := cmd.Flags().GetString("catalog-dir")
	if catalogDir == "" {
		catalogDir = "catalog"
	}
	sourceFilter, _ := cmd.Flags().GetString("source")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	cfg := types.FetchConfig{
		UserAgent:     viper.GetString("fetch.user_agent"),
		OpenFDAAPIKey: viper.GetString("fetch.openfda_api_key"),
		MaxResults:    maxResults,
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "recalllens/" + version
	}
	if cfg.OpenFDAAPIKey == "" {
		loaded, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		cfg.OpenFDAAPIKey = loaded["openfda-api-key"]
	}

	backends := feedfetch.DefaultBackends()
	if sourceFilter != "" {
		var filtered []feedfetch.Backend
		for _, b := range backends {
			if string(b.Source()) == sourceFilter {
				filtered = append(filtered, b)
			}
		}
		if len(filtered) == 0 {
			return fmt.Errorf("unknown source %q: use fda, fsis, or cpsc", sourceFilter)
		}
		backends = filtered
	}

	summary, err := feedfetch.FetchAll(context.Background(), backends, cfg, catalogDir, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d source(s) failed to fetch", summary.Failed)
	}
	return nil
}

// --- import subcommand ---

var catalogImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Ingest recall feed files into the catalog",
	Long: `Import reads feed YAML files from <catalog-dir>/feeds/ (one subdirectory
per source), ingests them into a SQLite database with UPC-family and FTS5
indexing, and skips unchanged files on subsequent runs.`,
	RunE: runCatalogImport,
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d feed file(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- query subcommand ---

var catalogQueryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Query the catalog with full-text search and filters",
	Long: `Query searches the catalog using FTS5 full-text search over brands,
product descriptions, and hazard text, structured filters (source, status),
or a combination of both.`,
	RunE: runCatalogQuery,
}

func runCatalogQuery(cmd *cobra.Command, args []string) error {
	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide search text, --source, or --status")
	}

	results, err := store.Query(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(results, jsonOutput)
}

func formatQueryOutput(results []types.RecallRecord, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-18s  %-6s  %-24s  %-40s  %s\n",
		"ID", "Source", "Brands", "Product", "Status")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for _, r := range results {
		brands := strings.Join(r.Brands, ", ")
		if len(brands) > 24 {
			brands = brands[:21] + "..."
		}
		product := r.Product
		if len(product) > 40 {
			product = product[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-18s  %-6s  %-24s  %-40s  %s\n",
			r.ID, r.Source, brands, product, r.Status)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog to YAML or JSON",
	Long: `Export writes the full catalog to <catalog-dir>/index/export.yaml or
export.json, ordered by record key.`,
	RunE: runCatalogExport,
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background()); err != nil {
			return err
		}
		fmt.Println("Exported to index/export.yaml")
	case "json":
		if err := store.ExportJSON(context.Background()); err != nil {
			return err
		}
		fmt.Println("Exported to index/export.json")
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func openCatalog(cmd *cobra.Command) (*catalog.Store, error) {
	catalogDir, _ := cmd.Flags().GetString("catalog-dir")
	if catalogDir == "" {
		catalogDir = "catalog"
	}
	maxCandidates, _ := cmd.Flags().GetInt("max-candidates")

	return catalog.NewStore(types.CatalogConfig{
		CatalogDir:    catalogDir,
		MaxCandidates: maxCandidates,
	})
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) catalog.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	source, _ := cmd.Flags().GetString("source")
	status, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")

	return catalog.QueryOptions{
		Text:       queryText,
		Source:     types.Source(source),
		Status:     types.RecallStatus(status),
		MaxResults: limit,
	}
}

func init() {
	catalogCmd.PersistentFlags().Int("max-candidates", 0, "maximum records per query (0 = default)")

	// Fetch flags.
	catalogFetchCmd.Flags().String("source", "", "fetch one source only: fda, fsis, cpsc")
	catalogFetchCmd.Flags().Int("max-results", 0, "maximum records per source (0 = default)")

	// Query flags.
	catalogQueryCmd.Flags().String("query", "", "full-text search over brands, product, hazard")
	catalogQueryCmd.Flags().String("source", "", "filter by source: fda, fsis, cpsc")
	catalogQueryCmd.Flags().String("status", "", "filter by status: ongoing, terminated, unknown")
	catalogQueryCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	catalogQueryCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	catalogExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	// Wire subcommands.
	catalogCmd.AddCommand(catalogFetchCmd)
	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogQueryCmd)
	catalogCmd.AddCommand(catalogExportCmd)

	rootCmd.AddCommand(catalogCmd)
}

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

	"github.com/felixleeca/recalllens/internal/decision"
	"github.com/felixleeca/recalllens/internal/fieldparse"
	"github.com/felixleeca/recalllens/pkg/types"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check a product scan against the recall catalog",
	Long: `Check evaluates a product scan against the local recall catalog and
prints a GREEN, YELLOW, or RED verdict with the reasons behind it.

Provide structured fields (--upc, --brand, --product, --lot, --expiry), or
pass raw label text with --text to have lot codes and expiry dates extracted
automatically. Structured fields win over extracted ones.`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	scan, err := scanFromFlags(cmd)
	if err != nil {
		return err
	}
	if scan.IsEmpty() {
		return fmt.Errorf("nothing to check: provide --upc, --brand, --product, --lot, --expiry, or --text")
	}

	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	candidates, err := store.Candidates(context.Background(), scan)
	if err != nil {
		return err
	}

	result := decision.EvaluateWith(scan, candidates, matchConfigFromViper(cmd))

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(result)
	return nil
}

// scanFromFlags builds the scan input from structured flags, filling lot and
// expiry from --text extraction when the structured flags left them empty.
func scanFromFlags(cmd *cobra.Command) (types.ScanInput, error) {
	upc, _ := cmd.Flags().GetString("upc")
	brand, _ := cmd.Flags().GetString("brand")
	product, _ := cmd.Flags().GetString("product")
	lot, _ := cmd.Flags().GetString("lot")
	expiry, _ := cmd.Flags().GetString("expiry")
	text, _ := cmd.Flags().GetString("text")

	scan := types.ScanInput{
		UPC:     upc,
		Brand:   brand,
		Product: product,
		Lot:     lot,
		Expiry:  expiry,
	}

	if text != "" {
		ex := fieldparse.ExtractFromText(text)
		if scan.Lot == "" && len(ex.Lots) > 0 {
			scan.Lot = ex.Lots[0].Normalized
		}
		if scan.Expiry == "" && len(ex.Expiries) > 0 {
			scan.Expiry = ex.Expiries[0].Normalized
		}
	}

	return scan, nil
}

// matchConfigFromViper merges threshold flags over config-file values. Flag
// zero values fall through to viper, then to the calibrated defaults.
func matchConfigFromViper(cmd *cobra.Command) types.MatchConfig {
	cfg := types.MatchConfig{
		BrandThreshold:   viper.GetFloat64("match.brand_threshold"),
		ProductThreshold: viper.GetFloat64("match.product_threshold"),
	}
	if v, _ := cmd.Flags().GetFloat64("brand-threshold"); v > 0 {
		cfg.BrandThreshold = v
	}
	if v, _ := cmd.Flags().GetFloat64("product-threshold"); v > 0 {
		cfg.ProductThreshold = v
	}
	return cfg
}

func printResult(result types.MatchResult) {
	fmt.Printf("Verdict: %s\n", strings.ToUpper(string(result.Decision)))
	if result.Confidence != nil {
		fmt.Printf("Confidence: %.2f\n", *result.Confidence)
	}

	fmt.Println("\nReasons:")
	for _, r := range result.Reasons {
		fmt.Printf("  - %s\n", r)
	}

	if len(result.Matches) == 0 {
		return
	}

	fmt.Printf("\nMatching recalls (%d):\n", len(result.Matches))
	for _, m := range result.Matches {
		fmt.Printf("  %s/%s  %s", m.Source, m.ID, m.Product)
		if len(m.Brands) > 0 {
			fmt.Printf("  [%s]", strings.Join(m.Brands, ", "))
		}
		fmt.Println()
		if m.Hazard != "" {
			fmt.Printf("    hazard: %s\n", m.Hazard)
		}
		for _, a := range m.Actions {
			fmt.Printf("    action: %s\n", a)
		}
		if m.Links.Official != "" {
			fmt.Printf("    notice: %s\n", m.Links.Official)
		}
	}
}

func init() {
	checkCmd.Flags().String("upc", "", "barcode as scanned or typed")
	checkCmd.Flags().String("brand", "", "brand name from the package")
	checkCmd.Flags().String("product", "", "product description from the package")
	checkCmd.Flags().String("lot", "", "lot or batch code from the package")
	checkCmd.Flags().String("expiry", "", "expiration date text from the package")
	checkCmd.Flags().String("text", "", "raw label text to extract lot/expiry from")
	checkCmd.Flags().Float64("brand-threshold", 0, "minimum brand similarity (0 = default)")
	checkCmd.Flags().Float64("product-threshold", 0, "minimum product similarity (0 = default)")
	checkCmd.Flags().Bool("json", false, "output the result as JSON")

	rootCmd.AddCommand(checkCmd)
}

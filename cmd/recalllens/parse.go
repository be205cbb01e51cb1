// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixleeca/recalllens/internal/barcode"
	"github.com/felixleeca/recalllens/internal/fieldparse"
)

var parseCmd = &cobra.Command{
	Use:   "parse [text...]",
	Short: "Show what lot codes, expiry dates, and barcodes parse out of text",
	Long: `Parse runs the field extractors over raw label text and shows every lot
code and expiry date they recognize, plus barcode normalization when --upc is
given. Useful for debugging why a check did or did not fire.`,
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	text, _ := cmd.Flags().GetString("text")
	if text == "" && len(args) > 0 {
		text = strings.Join(args, " ")
	}
	upc, _ := cmd.Flags().GetString("upc")

	if text == "" && upc == "" {
		return fmt.Errorf("nothing to parse: provide label text or --upc")
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")

	type parseOutput struct {
		Barcode  any                 `json:"barcode,omitempty"`
		Lots     []map[string]string `json:"lots"`
		Expiries []map[string]any    `json:"expiries"`
	}
	var out parseOutput
	out.Lots = []map[string]string{}
	out.Expiries = []map[string]any{}

	if upc != "" {
		id := barcode.Normalize(upc)
		out.Barcode = id
		if !jsonOutput {
			fmt.Printf("barcode: %s  kind=%s  valid=%v\n", id.Digits, id.Kind, id.IsValid)
		}
	}

	if text != "" {
		ex := fieldparse.ExtractFromText(text)
		for _, lot := range ex.Lots {
			out.Lots = append(out.Lots, map[string]string{
				"raw": lot.Raw, "normalized": lot.Normalized,
			})
			if !jsonOutput {
				fmt.Printf("lot:     %s  (from %q)\n", lot.Normalized, lot.Raw)
			}
		}
		for _, exp := range ex.Expiries {
			out.Expiries = append(out.Expiries, map[string]any{
				"raw": exp.Raw, "normalized": exp.Normalized, "confidence": exp.Confidence,
			})
			if !jsonOutput {
				fmt.Printf("expiry:  %s  (from %q, confidence %.2f)\n",
					exp.Normalized, exp.Raw, exp.Confidence)
			}
		}
		if !jsonOutput && len(ex.Lots) == 0 && len(ex.Expiries) == 0 {
			fmt.Println("no lot codes or expiry dates recognized")
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	return nil
}

func init() {
	parseCmd.Flags().String("text", "", "raw label text to extract from")
	parseCmd.Flags().String("upc", "", "barcode to normalize and validate")
	parseCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(parseCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feedfetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/felixleeca/recalllens/internal/fieldparse"
	"github.com/felixleeca/recalllens/internal/httputil"
	"github.com/felixleeca/recalllens/pkg/types"
)

// openFDAAPIBase is the openFDA food enforcement endpoint. Declared as a
// var so tests can substitute an httptest server.
var openFDAAPIBase = "https://api.fda.gov/food/enforcement.json"

// OpenFDABackend fetches food enforcement reports from openFDA.
type OpenFDABackend struct {
	Client *http.Client
}

// Name returns the backend identifier.
func (b *OpenFDABackend) Name() string { return "openfda" }

// Source returns the agency the backend covers.
func (b *OpenFDABackend) Source() types.Source { return types.SourceFDA }

// Fetch downloads enforcement reports and maps them to recall records.
func (b *OpenFDABackend) Fetch(ctx context.Context, cfg types.FetchConfig) ([]types.RecallRecord, error) {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 100
	}

	params := url.Values{
		"limit": {fmt.Sprintf("%d", maxResults)},
		"sort":  {"report_date:desc"},
	}
	if cfg.OpenFDAAPIKey != "" {
		params.Set("api_key", cfg.OpenFDAAPIKey)
	}
	reqURL := openFDAAPIBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, clientOrDefault(b.Client), req, 0)
	if err != nil {
		return nil, fmt.Errorf("openFDA API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openFDA API returned HTTP %d", resp.StatusCode)
	}

	var fr openFDAResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return nil, fmt.Errorf("parsing openFDA response: %w", err)
	}

	var records []types.RecallRecord
	for _, e := range fr.Results {
		if e.RecallNumber == "" {
			continue
		}
		records = append(records, types.RecallRecord{
			ID:          e.RecallNumber,
			Source:      types.SourceFDA,
			Brands:      brandFromFirm(e.RecallingFirm),
			Product:     e.ProductDescription,
			UPCs:        e.OpenFDA.UPC,
			LotPatterns: lotPatternsFromCodeInfo(e.CodeInfo),
			Hazard:      e.ReasonForRecall,
			Published:   isoFromCompactDate(e.RecallInitiationDate),
			Status:      openFDAStatus(e.Status),
		})
	}
	return records, nil
}

func brandFromFirm(firm string) []string {
	firm = strings.TrimSpace(firm)
	if firm == "" {
		return nil
	}
	return []string{firm}
}

// lotPatternsFromCodeInfo extracts lot codes from the free-text code_info
// field and turns each into an exact-match pattern. Enforcement reports list
// codes as prose, so only codes the parser recognizes become patterns.
func lotPatternsFromCodeInfo(codeInfo string) []string {
	if codeInfo == "" {
		return nil
	}
	ex := fieldparse.ExtractFromText(codeInfo)
	patterns := make([]string, 0, len(ex.Lots))
	for _, lot := range ex.Lots {
		patterns = append(patterns, "^"+regexp.QuoteMeta(lot.Normalized)+"$")
	}
	return patterns
}

// isoFromCompactDate converts openFDA's YYYYMMDD dates to ISO YYYY-MM-DD.
// Unrecognized values pass through empty.
func isoFromCompactDate(d string) string {
	if len(d) != 8 {
		return ""
	}
	return d[:4] + "-" + d[4:6] + "-" + d[6:]
}

func openFDAStatus(s string) types.RecallStatus {
	switch strings.ToLower(s) {
	case "ongoing":
		return types.StatusOngoing
	case "terminated", "completed":
		return types.StatusTerminated
	default:
		return types.StatusUnknown
	}
}

// openFDA API JSON structures.
type openFDAResponse struct {
	Results []openFDAEnforcement `json:"results"`
}

type openFDAEnforcement struct {
	RecallNumber         string       `json:"recall_number"`
	Status               string       `json:"status"`
	ProductDescription   string       `json:"product_description"`
	ReasonForRecall      string       `json:"reason_for_recall"`
	RecallingFirm        string       `json:"recalling_firm"`
	RecallInitiationDate string       `json:"recall_initiation_date"`
	CodeInfo             string       `json:"code_info"`
	OpenFDA              openFDAExtra `json:"openfda"`
}

type openFDAExtra struct {
	UPC []string `json:"upc"`
}

// clientOrDefault lets backends constructed without a client fall back to
// the default one.
func clientOrDefault(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return http.DefaultClient
}

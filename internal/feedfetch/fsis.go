// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feedfetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/felixleeca/recalllens/internal/httputil"
	"github.com/felixleeca/recalllens/pkg/types"
)

// fsisAPIBase is the FSIS recall API endpoint. Declared as a var so tests
// can substitute an httptest server.
var fsisAPIBase = "https://www.fsis.usda.gov/fsis/api/recall/v/1"

// FSISBackend fetches meat and poultry recalls from the USDA FSIS API.
type FSISBackend struct {
	Client *http.Client
}

// Name returns the backend identifier.
func (b *FSISBackend) Name() string { return "fsis" }

// Source returns the agency the backend covers.
func (b *FSISBackend) Source() types.Source { return types.SourceFSIS }

// Fetch downloads FSIS recall notices and maps them to recall records.
func (b *FSISBackend) Fetch(ctx context.Context, cfg types.FetchConfig) ([]types.RecallRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fsisAPIBase, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, clientOrDefault(b.Client), req, 0)
	if err != nil {
		return nil, fmt.Errorf("FSIS API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("FSIS API returned HTTP %d", resp.StatusCode)
	}

	var notices []fsisNotice
	if err := json.NewDecoder(resp.Body).Decode(&notices); err != nil {
		return nil, fmt.Errorf("parsing FSIS response: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 100
	}
	if len(notices) > maxResults {
		notices = notices[:maxResults]
	}

	var records []types.RecallRecord
	for _, n := range notices {
		if n.RecallNumber == "" {
			continue
		}
		product := strings.TrimSpace(n.ProductItems)
		if product == "" {
			product = strings.TrimSpace(n.Title)
		}
		records = append(records, types.RecallRecord{
			ID:        n.RecallNumber,
			Source:    types.SourceFSIS,
			Brands:    brandFromFirm(n.Establishment),
			Product:   product,
			Hazard:    n.RecallReason,
			Published: n.RecallDate,
			Status:    fsisStatus(n.ActiveNotice),
		})
	}
	return records, nil
}

func fsisStatus(active string) types.RecallStatus {
	switch strings.ToLower(strings.TrimSpace(active)) {
	case "true", "yes", "1":
		return types.StatusOngoing
	case "false", "no", "0":
		return types.StatusTerminated
	default:
		return types.StatusUnknown
	}
}

// FSIS API JSON structure. The API names fields with a field_ prefix.
type fsisNotice struct {
	Title         string `json:"field_title"`
	RecallNumber  string `json:"field_recall_number"`
	RecallDate    string `json:"field_recall_date"`
	RecallReason  string `json:"field_recall_reason"`
	ActiveNotice  string `json:"field_active_notice"`
	ProductItems  string `json:"field_product_items"`
	Establishment string `json:"field_establishment"`
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feedfetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/felixleeca/recalllens/internal/httputil"
	"github.com/felixleeca/recalllens/pkg/types"
)

// cpscAPIBase is the CPSC SaferProducts recall endpoint. Declared as a var
// so tests can substitute an httptest server.
var cpscAPIBase = "https://www.saferproducts.gov/RestWebServices/Recall"

// CPSCBackend fetches consumer product recalls from the CPSC API.
type CPSCBackend struct {
	Client *http.Client
}

// Name returns the backend identifier.
func (b *CPSCBackend) Name() string { return "cpsc" }

// Source returns the agency the backend covers.
func (b *CPSCBackend) Source() types.Source { return types.SourceCPSC }

// Fetch downloads CPSC recalls and maps them to recall records.
func (b *CPSCBackend) Fetch(ctx context.Context, cfg types.FetchConfig) ([]types.RecallRecord, error) {
	params := url.Values{"format": {"json"}}
	reqURL := cpscAPIBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, clientOrDefault(b.Client), req, 0)
	if err != nil {
		return nil, fmt.Errorf("CPSC API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CPSC API returned HTTP %d", resp.StatusCode)
	}

	var recalls []cpscRecall
	if err := json.NewDecoder(resp.Body).Decode(&recalls); err != nil {
		return nil, fmt.Errorf("parsing CPSC response: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 100
	}
	if len(recalls) > maxResults {
		recalls = recalls[:maxResults]
	}

	var records []types.RecallRecord
	for _, r := range recalls {
		id := r.RecallNumber
		if id == "" && r.RecallID > 0 {
			id = strconv.Itoa(r.RecallID)
		}
		if id == "" {
			continue
		}

		var brands, upcs, actions, hazards []string
		for _, m := range r.Manufacturers {
			if m.Name != "" {
				brands = append(brands, m.Name)
			}
		}
		product := strings.TrimSpace(r.Title)
		for _, p := range r.Products {
			if product == "" && p.Name != "" {
				product = p.Name
			}
			if p.UPC != "" {
				upcs = append(upcs, p.UPC)
			}
		}
		for _, h := range r.Hazards {
			if h.Name != "" {
				hazards = append(hazards, h.Name)
			}
		}
		for _, rem := range r.Remedies {
			if rem.Name != "" {
				actions = append(actions, rem.Name)
			}
		}

		published := r.RecallDate
		if len(published) > 10 {
			published = published[:10]
		}

		records = append(records, types.RecallRecord{
			ID:        id,
			Source:    types.SourceCPSC,
			Brands:    brands,
			Product:   product,
			UPCs:      upcs,
			Hazard:    strings.Join(hazards, "; "),
			Actions:   actions,
			Links:     types.Links{Official: r.URL},
			Published: published,
			Status:    types.StatusOngoing,
		})
	}
	return records, nil
}

// CPSC API JSON structures.
type cpscRecall struct {
	RecallID      int                `json:"RecallID"`
	RecallNumber  string             `json:"RecallNumber"`
	RecallDate    string             `json:"RecallDate"`
	Title         string             `json:"Title"`
	Description   string             `json:"Description"`
	URL           string             `json:"URL"`
	Products      []cpscProduct      `json:"Products"`
	Hazards       []cpscNamed        `json:"Hazards"`
	Remedies      []cpscNamed        `json:"Remedies"`
	Manufacturers []cpscManufacturer `json:"Manufacturers"`
}

type cpscProduct struct {
	Name string `json:"Name"`
	UPC  string `json:"UPC"`
}

type cpscNamed struct {
	Name string `json:"Name"`
}

type cpscManufacturer struct {
	Name string `json:"Name"`
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// CatalogConfig holds settings for the recall catalog store.
type CatalogConfig struct {
	// CatalogDir is the base directory for catalog data (contains feeds/, index/).
	CatalogDir string `json:"catalog_dir" yaml:"catalog_dir"`

	// MaxCandidates caps the candidate set handed to the decision engine
	// (default 200).
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates"`
}

// MatchConfig holds similarity thresholds for the brand/product tier.
// Zero values select the calibrated defaults (0.8 brand, 0.7 product).
type MatchConfig struct {
	// BrandThreshold is the minimum Jaro-Winkler score for a brand match.
	BrandThreshold float64 `json:"brand_threshold" yaml:"brand_threshold"`

	// ProductThreshold is the minimum combined similarity for a product match.
	ProductThreshold float64 `json:"product_threshold" yaml:"product_threshold"`
}

// ServerConfig holds settings for the local HTTP API.
type ServerConfig struct {
	// Addr is the listen address (default "127.0.0.1:8377").
	Addr string `json:"addr" yaml:"addr"`

	// AllowedOrigins lists CORS origins for the scanner frontend.
	// Entries may end in "*" for prefix matching.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`

	// RateLimit is requests per second per server (default 20).
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit"`

	// RateBurst is the token-bucket burst size (default 40).
	RateBurst int `json:"rate_burst" yaml:"rate_burst"`

	// ReadTimeout bounds request reads (default 10s).
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout"`
}

// FetchConfig holds settings for downloading recall data from the agency
// APIs.
type FetchConfig struct {
	// UserAgent identifies this client to the agency APIs.
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// OpenFDAAPIKey raises the openFDA rate limit. Optional.
	OpenFDAAPIKey string `json:"openfda_api_key" yaml:"openfda_api_key"`

	// MaxResults caps records fetched per source (default 100).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`
	Match   MatchConfig   `json:"match" yaml:"match"`
	Server  ServerConfig  `json:"server" yaml:"server"`
	Fetch   FetchConfig   `json:"fetch" yaml:"fetch"`
}

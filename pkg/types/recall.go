// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the value types exchanged between the recalllens
// pipeline stages. All types are immutable-by-convention: stages receive
// and return them by value and never mutate shared state.
package types

// Source identifies the government agency a recall record came from.
type Source string

const (
	SourceFDA  Source = "fda"
	SourceFSIS Source = "fsis"
	SourceCPSC Source = "cpsc"
)

// RecallStatus describes the lifecycle state of a recall.
type RecallStatus string

const (
	StatusOngoing    RecallStatus = "ongoing"
	StatusTerminated RecallStatus = "terminated"
	StatusUnknown    RecallStatus = "unknown"
)

// Links holds the official URLs attached to a recall record.
type Links struct {
	// Official is the agency's recall notice URL.
	Official string `json:"official" yaml:"official"`

	// Manufacturer is an optional manufacturer advisory URL.
	Manufacturer string `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty"`
}

// ValidityWindow bounds the expiry dates affected by a recall.
// Either bound may be empty, meaning unbounded on that side.
type ValidityWindow struct {
	// Start is the earliest affected expiry date (ISO YYYY-MM-DD).
	Start string `json:"start,omitempty" yaml:"start,omitempty"`

	// End is the latest affected expiry date (ISO YYYY-MM-DD).
	End string `json:"end,omitempty" yaml:"end,omitempty"`
}

// IsZero reports whether the window carries no bounds at all.
func (w ValidityWindow) IsZero() bool {
	return w.Start == "" && w.End == ""
}

// RecallRecord is an immutable fact describing one official recall, already
// normalized to the unified schema by the data-retrieval collaborator.
// Brands and UPCs are deduplicated at ingest; LotPatterns entries are
// regular-expression strings that may be malformed, which downstream
// matching treats as non-matching rather than failing the record.
type RecallRecord struct {
	// ID is the source-native identifier, unique within its source.
	ID string `json:"id" yaml:"id"`

	// Source is the issuing agency: fda, fsis, or cpsc.
	Source Source `json:"source" yaml:"source"`

	// Brands lists brand-name variants, lowercase-normalized.
	Brands []string `json:"brands" yaml:"brands"`

	// Product is the normalized product description.
	Product string `json:"product" yaml:"product"`

	// UPCs lists canonical barcode strings. May be empty.
	UPCs []string `json:"upcs,omitempty" yaml:"upcs,omitempty"`

	// LotPatterns are regular expressions describing recalled lot codes.
	LotPatterns []string `json:"lot_patterns,omitempty" yaml:"lot_patterns,omitempty"`

	// ValidityWindow bounds affected expiry dates. Nil means unconstrained.
	ValidityWindow *ValidityWindow `json:"validity_window,omitempty" yaml:"validity_window,omitempty"`

	// Hazard is the free-text hazard description.
	Hazard string `json:"hazard,omitempty" yaml:"hazard,omitempty"`

	// Actions lists recommended consumer actions, in order.
	Actions []string `json:"actions,omitempty" yaml:"actions,omitempty"`

	// Jurisdictions lists affected regions, if the source scopes the recall.
	Jurisdictions []string `json:"jurisdictions,omitempty" yaml:"jurisdictions,omitempty"`

	// Links holds the official and manufacturer URLs.
	Links Links `json:"links" yaml:"links"`

	// Published and Updated are ISO dates from the source.
	Published string `json:"published,omitempty" yaml:"published,omitempty"`
	Updated   string `json:"updated,omitempty" yaml:"updated,omitempty"`

	// Status is the recall lifecycle state.
	Status RecallStatus `json:"status" yaml:"status"`
}

// HasLotConstraint reports whether the record restricts matching to
// specific lot codes.
func (r RecallRecord) HasLotConstraint() bool {
	return len(r.LotPatterns) > 0
}

// HasExpiryConstraint reports whether the record restricts matching to
// an expiry date window.
func (r RecallRecord) HasExpiryConstraint() bool {
	return r.ValidityWindow != nil && !r.ValidityWindow.IsZero()
}

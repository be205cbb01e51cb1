// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ScanInput holds the fields captured from one user interaction: a barcode
// scan, OCR of a label, or manual entry. Every field is optional; an input
// with no fields set is valid and classifies as GREEN with no matches.
type ScanInput struct {
	// UPC is the raw barcode string as scanned or typed.
	UPC string `json:"upc,omitempty" yaml:"upc,omitempty"`

	// Brand is the brand name as read from the package.
	Brand string `json:"brand,omitempty" yaml:"brand,omitempty"`

	// Product is the product description as read from the package.
	Product string `json:"product,omitempty" yaml:"product,omitempty"`

	// Lot is the lot/batch code as read from the package.
	Lot string `json:"lot,omitempty" yaml:"lot,omitempty"`

	// Expiry is the expiration date text as read from the package.
	Expiry string `json:"expiry,omitempty" yaml:"expiry,omitempty"`
}

// IsEmpty reports whether the scan carries no identifying fields.
func (s ScanInput) IsEmpty() bool {
	return s.UPC == "" && s.Brand == "" && s.Product == "" && s.Lot == "" && s.Expiry == ""
}

// Decision is the traffic-light verdict for a scan.
type Decision string

const (
	// DecisionGreen means no candidate recall matched the scan.
	DecisionGreen Decision = "green"

	// DecisionYellow means a recall plausibly applies but a distinguishing
	// constraint (lot code, expiry window) was not confirmed.
	DecisionYellow Decision = "yellow"

	// DecisionRed means a recall matched the scan's identifying signals.
	DecisionRed Decision = "red"
)

// MatchResult is the decision engine's output for one scan.
type MatchResult struct {
	// Decision is the traffic-light verdict.
	Decision Decision `json:"decision" yaml:"decision"`

	// Reasons justify the decision, most decisive first.
	Reasons []string `json:"reasons" yaml:"reasons"`

	// Matches are the candidate records supporting the decision.
	// Empty for GREEN.
	Matches []RecallRecord `json:"matches" yaml:"matches"`

	// Confidence is a 0-1 score, present whenever the decision was derived
	// from at least one signal. Nil for the no-signal GREEN outcome.
	Confidence *float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
}

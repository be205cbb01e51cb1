// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// BarcodeKind classifies a normalized numeric identifier.
type BarcodeKind string

const (
	KindUPCA    BarcodeKind = "upc-a"
	KindEAN13   BarcodeKind = "ean-13"
	KindEAN8    BarcodeKind = "ean-8"
	KindInvalid BarcodeKind = "invalid"
)

// NormalizedIdentifier is the output of barcode normalization. Computed on
// demand; never persisted.
type NormalizedIdentifier struct {
	// Kind is the classified symbology, or invalid.
	Kind BarcodeKind `json:"kind" yaml:"kind"`

	// Digits is the canonical zero-padded digit string.
	Digits string `json:"digits" yaml:"digits"`

	// IsValid reports whether the trailing check digit verified.
	IsValid bool `json:"is_valid" yaml:"is_valid"`
}

// ParsedLot is a lot code extracted from free-form text.
type ParsedLot struct {
	// Raw is the text the lot was parsed from.
	Raw string `json:"raw" yaml:"raw"`

	// Normalized is the uppercased canonical form.
	Normalized string `json:"normalized" yaml:"normalized"`

	// Prefix, Digits, and Suffix decompose the lot where the pattern
	// exposes them. All empty when the form is opaque.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Digits string `json:"digits,omitempty" yaml:"digits,omitempty"`
	Suffix string `json:"suffix,omitempty" yaml:"suffix,omitempty"`
}

// ParsedExpiry is an expiration date extracted from free-form text.
type ParsedExpiry struct {
	// Raw is the text the date was parsed from.
	Raw string `json:"raw" yaml:"raw"`

	// Normalized is the ISO YYYY-MM-DD form.
	Normalized string `json:"normalized" yaml:"normalized"`

	// Confidence is 0-1. Pattern-matched dates carry 0.9; the remaining
	// range is reserved for heuristic sources.
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

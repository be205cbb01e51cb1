// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package barcode validates and canonicalizes barcode-like numeric
// identifiers (UPC-A, EAN-13, EAN-8) and determines product-family
// equivalence across packaging variants. Pure functions; no input panics.
package barcode

import (
	"strings"

	"github.com/felixleeca/recalllens/pkg/types"
)

// Normalize strips non-digit characters from input, classifies the result
// by length, zero-pads to the classified length, and verifies the trailing
// mod-10 check digit. Unclassifiable input yields Kind invalid with
// IsValid false; the digits are still returned so callers can surface an
// "unreadable barcode" to the user.
func Normalize(input string) types.NormalizedIdentifier {
	digits := stripNonDigits(input)

	var kind types.BarcodeKind
	switch len(digits) {
	case 8:
		kind = types.KindEAN8
	case 12:
		kind = types.KindUPCA
	case 13:
		kind = types.KindEAN13
	default:
		return types.NormalizedIdentifier{
			Kind:    types.KindInvalid,
			Digits:  digits,
			IsValid: false,
		}
	}

	digits = pad(digits, len(digits))

	return types.NormalizedIdentifier{
		Kind:    kind,
		Digits:  digits,
		IsValid: checkDigitValid(digits, kind),
	}
}

// Equivalent reports whether two valid identifiers refer to the same
// product family. Identifiers are equivalent when bit-identical, or when
// both are UPC-A sharing the first 11 digits, or both EAN-13 sharing the
// first 12 (the check digit is the most commonly mistranscribed digit).
// Invalid identifiers are never equivalent to anything.
func Equivalent(a, b types.NormalizedIdentifier) bool {
	if !a.IsValid || !b.IsValid {
		return false
	}
	if a.Kind == b.Kind && a.Digits == b.Digits {
		return true
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case types.KindUPCA:
		return a.Digits[:11] == b.Digits[:11]
	case types.KindEAN13:
		return a.Digits[:12] == b.Digits[:12]
	}
	return false
}

// stripNonDigits returns only the ASCII digits of s.
func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// pad left-pads s with zeros to width. Input is already width long in
// practice; the pad guards callers that hand in pre-stripped digits.
func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// checkDigitValid computes the standard GS1 mod-10 weighted checksum over
// all but the last digit and compares it to the last digit. UPC-A and
// EAN-8 weight 3 on even indexes; EAN-13 weights 1 on even indexes.
func checkDigitValid(digits string, kind types.BarcodeKind) bool {
	sum := 0
	for i := 0; i < len(digits)-1; i++ {
		d := int(digits[i] - '0')
		weight := 3
		if kind == types.KindEAN13 {
			if i%2 == 0 {
				weight = 1
			}
		} else if i%2 == 1 {
			weight = 1
		}
		sum += d * weight
	}
	want := (10 - sum%10) % 10
	return int(digits[len(digits)-1]-'0') == want
}

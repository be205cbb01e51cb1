// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package decision classifies a scan against a pre-filtered candidate set
// of recall records into a GREEN / YELLOW / RED verdict with ordered,
// human-auditable reasons and a confidence score.
//
// The cascade is an ordered list of pure tier evaluators; the engine runs
// them in order and stops at the first one that produces a verdict. The
// engine is deterministic and performs no I/O, randomness, or comparison
// against the current time.
package decision

import (
	"strings"

	"github.com/felixleeca/recalllens/internal/barcode"
	"github.com/felixleeca/recalllens/internal/fieldparse"
	"github.com/felixleeca/recalllens/internal/textmatch"
	"github.com/felixleeca/recalllens/pkg/types"
)

// Tier confidence levels.
const (
	confUPCExact        = 0.95
	confUPCLotMismatch  = 0.8
	confBrandConfirmed  = 0.85
	confBrandMismatch   = 0.7
	confBrandUnverified = 0.6
)

// candidate pairs a record with its lot patterns compiled once per
// evaluation, so patterns are not recompiled per match attempt.
type candidate struct {
	record      types.RecallRecord
	lotPatterns []fieldparse.LotPattern
}

// evalContext carries the scan's pre-normalized fields through the tiers.
type evalContext struct {
	scan types.ScanInput
	cfg  types.MatchConfig

	upc        types.NormalizedIdentifier
	lot        string // normalized lot code, empty if none usable
	expiry     string // ISO expiry date, empty if none usable
	candidates []candidate
}

// tierFunc evaluates one priority level of the cascade. A nil result means
// the tier produced no candidates and evaluation falls through.
type tierFunc func(ec *evalContext) *types.MatchResult

// tiers in strict priority order.
var tiers = []tierFunc{upcTier, brandProductTier}

// Evaluate classifies the scan against the candidate records using the
// default similarity thresholds.
func Evaluate(scan types.ScanInput, records []types.RecallRecord) types.MatchResult {
	return EvaluateWith(scan, records, types.MatchConfig{})
}

// EvaluateWith classifies the scan with explicit thresholds. Zero values
// in cfg select the calibrated defaults. Identical inputs always produce
// identical output; an empty scan falls through every tier to GREEN.
func EvaluateWith(scan types.ScanInput, records []types.RecallRecord, cfg types.MatchConfig) types.MatchResult {
	ec := newEvalContext(scan, records, cfg)

	if !scan.IsEmpty() {
		for _, tier := range tiers {
			if result := tier(ec); result != nil {
				return *result
			}
		}
	}

	return types.MatchResult{
		Decision: types.DecisionGreen,
		Reasons:  []string{"No matching recalls found"},
		Matches:  []types.RecallRecord{},
	}
}

func newEvalContext(scan types.ScanInput, records []types.RecallRecord, cfg types.MatchConfig) *evalContext {
	if cfg.BrandThreshold <= 0 {
		cfg.BrandThreshold = textmatch.DefaultBrandThreshold
	}
	if cfg.ProductThreshold <= 0 {
		cfg.ProductThreshold = textmatch.DefaultProductThreshold
	}

	ec := &evalContext{scan: scan, cfg: cfg}

	if scan.UPC != "" {
		ec.upc = barcode.Normalize(scan.UPC)
	}

	// The lot field may arrive raw from OCR; normalize when the parser
	// recognizes it, otherwise fall back to the trimmed uppercase text so
	// the record's own regex still gets a chance.
	if scan.Lot != "" {
		if lot, ok := fieldparse.ParseLot(scan.Lot); ok {
			ec.lot = lot.Normalized
		} else {
			ec.lot = strings.ToUpper(strings.TrimSpace(scan.Lot))
		}
	}

	if scan.Expiry != "" {
		if exp, ok := fieldparse.ParseExpiry(scan.Expiry); ok {
			ec.expiry = exp.Normalized
		}
	}

	ec.candidates = make([]candidate, 0, len(records))
	for _, r := range records {
		ec.candidates = append(ec.candidates, candidate{
			record:      r,
			lotPatterns: fieldparse.CompileLotPatterns(r.LotPatterns),
		})
	}
	return ec
}

// lotSatisfied reports whether the scan's lot code satisfies any of the
// candidate's compiled lot patterns. Invalid patterns never match.
func (c candidate) lotSatisfied(lot string) bool {
	if lot == "" {
		return false
	}
	for _, p := range c.lotPatterns {
		if p.Matches(lot) {
			return true
		}
	}
	return false
}

// expirySatisfied reports whether the scan's expiry date falls inside the
// candidate's validity window.
func (c candidate) expirySatisfied(expiry string) bool {
	if expiry == "" || !c.record.HasExpiryConstraint() {
		return false
	}
	w := c.record.ValidityWindow
	return fieldparse.DateInRange(expiry, w.Start, w.End)
}

// upcTier matches candidates by barcode identity. Skipped entirely when
// the scan carries no UPC, so a UPC-less scan falls through rather than
// concluding "no recall".
func upcTier(ec *evalContext) *types.MatchResult {
	if ec.scan.UPC == "" {
		return nil
	}

	var confirmed, lotMismatch []types.RecallRecord
	for _, c := range ec.candidates {
		if !upcMatches(ec.upc, c.record.UPCs) {
			continue
		}
		if !c.record.HasLotConstraint() || c.lotSatisfied(ec.lot) {
			confirmed = append(confirmed, c.record)
		} else {
			lotMismatch = append(lotMismatch, c.record)
		}
	}

	if len(confirmed) > 0 {
		reasons := []string{"Exact UPC match found"}
		if ec.lot != "" && anyLotConstrained(confirmed) {
			reasons = append(reasons, "Your lot code matches the recalled lots")
		}
		return verdict(types.DecisionRed, confUPCExact, reasons, confirmed)
	}

	if len(lotMismatch) > 0 {
		reasons := []string{
			"UPC matches a recalled product",
			"Your lot code does not match the recalled lots",
		}
		return verdict(types.DecisionYellow, confUPCLotMismatch, reasons, lotMismatch)
	}

	return nil
}

// upcMatches reports whether any of the record's UPC entries normalizes to
// a valid identifier equivalent to the scan's. An invalid scan UPC is
// never a positive identifier match.
func upcMatches(scanUPC types.NormalizedIdentifier, upcs []string) bool {
	if !scanUPC.IsValid {
		return false
	}
	for _, u := range upcs {
		if barcode.Equivalent(scanUPC, barcode.Normalize(u)) {
			return true
		}
	}
	return false
}

// brandProductTier matches candidates by fuzzy brand/product text. An
// absent scan field is a wildcard, not a mismatch; the tier still needs at
// least one textual signal to fire, otherwise a scan carrying only a UPC
// or lot code would wildcard-match the whole candidate set.
func brandProductTier(ec *evalContext) *types.MatchResult {
	if ec.scan.Brand == "" && ec.scan.Product == "" {
		return nil
	}

	var satisfied, unconstrained, unsatisfied []types.RecallRecord
	for _, c := range ec.candidates {
		if !ec.brandMatches(c.record) || !ec.productMatches(c.record) {
			continue
		}

		switch {
		case !c.record.HasLotConstraint() && !c.record.HasExpiryConstraint():
			unconstrained = append(unconstrained, c.record)
		case c.lotSatisfied(ec.lot) || c.expirySatisfied(ec.expiry):
			satisfied = append(satisfied, c.record)
		default:
			unsatisfied = append(unsatisfied, c.record)
		}
	}

	textReasons := ec.textMatchReasons()

	if len(satisfied) > 0 {
		reasons := append([]string{"Your lot code or expiry date matches the recall"}, textReasons...)
		return verdict(types.DecisionRed, confBrandConfirmed, reasons, satisfied)
	}

	if len(unconstrained) > 0 {
		matches := append(unconstrained, unsatisfied...)
		reasons := append(textReasons, "Recall is not narrowed by lot or expiry data")
		return verdict(types.DecisionYellow, confBrandUnverified, reasons, matches)
	}

	if len(unsatisfied) > 0 {
		reasons := append(textReasons, "Your lot code and expiry date do not match the recalled range")
		return verdict(types.DecisionYellow, confBrandMismatch, reasons, unsatisfied)
	}

	return nil
}

// brandMatches applies the wildcard rule: no scan brand matches anything;
// otherwise any of the record's brand variants must be brand-similar.
func (ec *evalContext) brandMatches(r types.RecallRecord) bool {
	if ec.scan.Brand == "" {
		return true
	}
	_, _, ok := textmatch.FindBestBrandMatch(ec.scan.Brand, r.Brands, ec.cfg.BrandThreshold)
	return ok
}

// productMatches applies the wildcard rule for the product description.
func (ec *evalContext) productMatches(r types.RecallRecord) bool {
	if ec.scan.Product == "" {
		return true
	}
	return textmatch.ProductSimilarity(ec.scan.Product, r.Product) >= ec.cfg.ProductThreshold
}

// textMatchReasons names the textual signals that fired, in signal order.
func (ec *evalContext) textMatchReasons() []string {
	var reasons []string
	if ec.scan.Brand != "" {
		reasons = append(reasons, "Brand name matches a recalled brand")
	}
	if ec.scan.Product != "" {
		reasons = append(reasons, "Product description matches a recalled product")
	}
	return reasons
}

// anyLotConstrained reports whether any record restricts lots, used to
// decide whether a confirmed UPC verdict owes the user a lot reason.
func anyLotConstrained(records []types.RecallRecord) bool {
	for _, r := range records {
		if r.HasLotConstraint() {
			return true
		}
	}
	return false
}

func verdict(d types.Decision, confidence float64, reasons []string, matches []types.RecallRecord) *types.MatchResult {
	return &types.MatchResult{
		Decision:   d,
		Reasons:    reasons,
		Matches:    matches,
		Confidence: &confidence,
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fieldparse extracts structured lot codes and expiry dates from
// free-form text (manual entry or OCR output) and tests parsed fields
// against a recall record's lot-pattern and validity-window constraints.
// Every function absorbs malformed input and reports "no parse" or
// "no match" instead of returning an error.
package fieldparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/felixleeca/recalllens/pkg/types"
)

// Lot code patterns, tried in order against trimmed uppercased text.
// First match wins; a single string never yields two interpretations.
var lotPatterns = []*regexp.Regexp{
	// Bare alphanumeric form: letter prefix, 4-6 digits, optional suffix.
	regexp.MustCompile(`^([A-Z]{1,3})(\d{4,6})([A-Z]{0,2})$`),

	// Labelled forms, each requiring a digit run of at least 4 digits.
	regexp.MustCompile(`^LOT\s*(?:NO\.?|#|:)?\s*([A-Z]{0,3})(\d{4,10})([A-Z]{0,3})$`),
	regexp.MustCompile(`^BATCH\s*(?:NO\.?|#|:)?\s*([A-Z]{0,3})(\d{4,10})([A-Z]{0,3})$`),
	regexp.MustCompile(`^SERIAL\s*(?:NO\.?|#|:)?\s*([A-Z]{0,3})(\d{4,10})([A-Z]{0,3})$`),
	regexp.MustCompile(`^MODEL\s*(?:NO\.?|#|:)?\s*([A-Z]{0,3})(\d{4,10})([A-Z]{0,3})$`),
}

// ParseLot tries the ordered lot patterns against the trimmed, uppercased
// text. The normalized form is the concatenated prefix+digits+suffix.
func ParseLot(text string) (types.ParsedLot, bool) {
	cleaned := strings.ToUpper(strings.TrimSpace(text))
	if cleaned == "" {
		return types.ParsedLot{}, false
	}

	for _, re := range lotPatterns {
		m := re.FindStringSubmatch(cleaned)
		if m == nil {
			continue
		}
		return types.ParsedLot{
			Raw:        text,
			Normalized: m[1] + m[2] + m[3],
			Prefix:     m[1],
			Digits:     m[2],
			Suffix:     m[3],
		}, true
	}
	return types.ParsedLot{}, false
}

// expiryLabelRe strips a date label like "BEST BY", "EXP", "USE BY", or
// "SELL BY" so the remainder can be tried against the numeric patterns.
var expiryLabelRe = regexp.MustCompile(`^(?:BEST\s+BY|BEST\s+BEFORE|USE\s+BY|SELL\s+BY|EXP(?:IRES|IRY|\.)?)\s*:?\s*`)

// Numeric date patterns, tried in order. Each submatch order is encoded in
// the layout tag so one loop can range-check and assemble the ISO form.
var expiryPatterns = []struct {
	re     *regexp.Regexp
	layout string // "mdy" or "ymd"
	twoY   bool
}{
	{regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`), "mdy", false},
	{regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`), "mdy", false},
	{regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2})$`), "mdy", true},
	{regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{2})$`), "mdy", true},
	{regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`), "ymd", false},
}

// parsedExpiryConfidence is emitted for every pattern-matched date. The
// remaining range is reserved for heuristic sources.
const parsedExpiryConfidence = 0.9

// ParseExpiry tries the ordered date patterns against the trimmed,
// uppercased text, with or without a leading label. A two-digit year below
// 50 maps to 2000+year, otherwise 1900+year. Candidate month and day are
// range-checked, then verified against the real calendar so impossible
// dates like 02/29/23 are rejected.
func ParseExpiry(text string) (types.ParsedExpiry, bool) {
	cleaned := strings.ToUpper(strings.TrimSpace(text))
	if cleaned == "" {
		return types.ParsedExpiry{}, false
	}
	cleaned = expiryLabelRe.ReplaceAllString(cleaned, "")

	for _, p := range expiryPatterns {
		m := p.re.FindStringSubmatch(cleaned)
		if m == nil {
			continue
		}

		var year, month, day int
		if p.layout == "ymd" {
			year, _ = strconv.Atoi(m[1])
			month, _ = strconv.Atoi(m[2])
			day, _ = strconv.Atoi(m[3])
		} else {
			month, _ = strconv.Atoi(m[1])
			day, _ = strconv.Atoi(m[2])
			year, _ = strconv.Atoi(m[3])
		}
		if p.twoY {
			if year < 50 {
				year += 2000
			} else {
				year += 1900
			}
		}

		if month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}
		if !calendarDateExists(year, month, day) {
			continue
		}

		return types.ParsedExpiry{
			Raw:        text,
			Normalized: fmt.Sprintf("%04d-%02d-%02d", year, month, day),
			Confidence: parsedExpiryConfidence,
		}, true
	}
	return types.ParsedExpiry{}, false
}

// calendarDateExists reports whether year/month/day is a real calendar
// date. time.Date normalizes overflow (Feb 30 → Mar 2), so a round-trip
// mismatch means the date does not exist.
func calendarDateExists(year, month, day int) bool {
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return d.Year() == year && int(d.Month()) == month && d.Day() == day
}

// Extraction holds the structured fields recovered from a text blob.
type Extraction struct {
	Lots     []types.ParsedLot
	Expiries []types.ParsedExpiry
}

// ExtractFromText splits text into non-empty trimmed lines and classifies
// each as a lot code or an expiry date. A line is tried as a lot first and
// as an expiry only if that fails; one line never yields both facts.
// A second fact co-located on one line is dropped (known limitation of the
// one-fact-per-line model).
func ExtractFromText(text string) Extraction {
	var out Extraction
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if lot, ok := ParseLot(line); ok {
			out.Lots = append(out.Lots, lot)
			continue
		}
		if exp, ok := ParseExpiry(line); ok {
			out.Expiries = append(out.Expiries, exp)
		}
	}
	return out
}

// MatchesLotPattern tests a normalized lot code against one recall
// lot-pattern regular expression, case-insensitively. A malformed pattern
// is treated as non-matching.
func MatchesLotPattern(lot, pattern string) bool {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return false
	}
	return re.MatchString(lot)
}

// LotPattern is one recall lot pattern, compiled once when the record
// enters a candidate set. A pattern that failed to compile stays in the
// list as invalid and never matches.
type LotPattern struct {
	Raw string

	re *regexp.Regexp
}

// Valid reports whether the pattern compiled.
func (p LotPattern) Valid() bool {
	return p.re != nil
}

// Matches tests a lot code against the compiled pattern. Invalid patterns
// never match.
func (p LotPattern) Matches(lot string) bool {
	if p.re == nil {
		return false
	}
	return p.re.MatchString(lot)
}

// CompileLotPatterns compiles each pattern case-insensitively, tagging
// compile failures as invalid instead of dropping them, so callers can
// still report how many of a record's patterns were unusable.
func CompileLotPatterns(patterns []string) []LotPattern {
	out := make([]LotPattern, 0, len(patterns))
	for _, raw := range patterns {
		re, err := regexp.Compile("(?i)" + raw)
		if err != nil {
			out = append(out, LotPattern{Raw: raw})
			continue
		}
		out = append(out, LotPattern{Raw: raw, re: re})
	}
	return out
}

const isoDateFmt = "2006-01-02"

// DateInRange reports whether date falls inside [start, end], all ISO
// YYYY-MM-DD strings. An empty bound is unbounded on that side. An
// unparseable date is never in range, and a present but unparseable bound
// fails closed: malformed range data excludes rather than admits.
func DateInRange(date, start, end string) bool {
	d, err := time.Parse(isoDateFmt, date)
	if err != nil {
		return false
	}
	if start != "" {
		s, err := time.Parse(isoDateFmt, start)
		if err != nil || d.Before(s) {
			return false
		}
	}
	if end != "" {
		e, err := time.Parse(isoDateFmt, end)
		if err != nil || d.After(e) {
			return false
		}
	}
	return true
}

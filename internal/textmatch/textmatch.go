// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textmatch computes normalized string similarity between brand
// and product names. Two independent algorithms cover the failure modes
// of scanned text: Jaro-Winkler tolerates typos and transpositions in
// short brand names, character n-gram cosine tolerates reordering and
// partial OCR misreads in longer product descriptions.
package textmatch

import (
	"math"
	"strings"
	"unicode"
)

// Calibrated thresholds. Brand names are short and typo-dominated, so the
// bar is higher; product descriptions vary by wording and get more slack.
const (
	DefaultBrandThreshold   = 0.8
	DefaultProductThreshold = 0.7
)

// stopWords are stripped during normalization so thresholds stay
// comparable across differently worded labels.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true,
	"and": true, "or": true, "but": true, "nor": true,
	"of": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "with": true, "by": true, "from": true, "as": true,
}

// Normalize lowercases and trims text, replaces punctuation with spaces,
// collapses whitespace runs, and strips stop words. Every similarity
// function applies it first so caller thresholds are comparable.
func Normalize(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	var kept []string
	for _, word := range strings.Fields(b.String()) {
		if stopWords[word] {
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}

// JaroWinkler returns the Jaro-Winkler similarity of the normalized
// strings, in [0, 1]. Identical normalized strings short-circuit to 1.0;
// either string empty after normalization short-circuits to 0.0.
func JaroWinkler(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0.0
	}
	if na == nb {
		return 1.0
	}

	j := jaro([]rune(na), []rune(nb))

	// Winkler bonus: up to 4 leading characters, 0.1 weight each, scaled
	// by how far the base score is from 1.
	prefix := 0
	ra, rb := []rune(na), []rune(nb)
	for prefix < len(ra) && prefix < len(rb) && prefix < 4 && ra[prefix] == rb[prefix] {
		prefix++
	}
	return j + float64(prefix)*0.1*(1.0-j)
}

// jaro computes the base Jaro similarity: matching characters within a
// window of floor(max(len)/2)-1, then transposition counting over the
// matched characters in order.
func jaro(a, b []rune) float64 {
	la, lb := len(a), len(b)

	window := la
	if lb > window {
		window = lb
	}
	window = window/2 - 1
	if window < 0 {
		window = 0
	}

	matchedA := make([]bool, la)
	matchedB := make([]bool, lb)
	matches := 0

	for i := 0; i < la; i++ {
		lo := i - window
		if lo < 0 {
			lo = 0
		}
		hi := i + window + 1
		if hi > lb {
			hi = lb
		}
		for j := lo; j < hi; j++ {
			if matchedB[j] || a[i] != b[j] {
				continue
			}
			matchedA[i] = true
			matchedB[j] = true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0.0
	}

	transpositions := 0
	j := 0
	for i := 0; i < la; i++ {
		if !matchedA[i] {
			continue
		}
		for !matchedB[j] {
			j++
		}
		if a[i] != b[j] {
			transpositions++
		}
		j++
	}

	m := float64(matches)
	return (m/float64(la) + m/float64(lb) + (m-float64(transpositions)/2.0)/m) / 3.0
}

// CosineNGram returns the cosine similarity of the two normalized strings'
// character n-gram frequency vectors, in [0, 1]. Returns 0.0 when either
// string is shorter than n after normalization.
func CosineNGram(a, b string, n int) float64 {
	if n < 1 {
		n = 2
	}
	va := ngramFreq(Normalize(a), n)
	vb := ngramFreq(Normalize(b), n)
	if len(va) == 0 || len(vb) == 0 {
		return 0.0
	}

	var dot, magA, magB float64
	for gram, ca := range va {
		magA += float64(ca * ca)
		if cb, ok := vb[gram]; ok {
			dot += float64(ca * cb)
		}
	}
	for _, cb := range vb {
		magB += float64(cb * cb)
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// ngramFreq builds a character n-gram frequency map over the runes of s.
func ngramFreq(s string, n int) map[string]int {
	runes := []rune(s)
	if len(runes) < n {
		return nil
	}
	freq := make(map[string]int, len(runes)-n+1)
	for i := 0; i+n <= len(runes); i++ {
		freq[string(runes[i:i+n])]++
	}
	return freq
}

// BrandSimilarity scores two brand names. Brands are short and
// typo-dominated, so Jaro-Winkler alone is used.
func BrandSimilarity(a, b string) float64 {
	return JaroWinkler(a, b)
}

// ProductSimilarity scores two product descriptions as the maximum of
// Jaro-Winkler and bigram cosine: n-gram overlap compensates for
// Jaro-Winkler's positional bias when wording or word order differs.
func ProductSimilarity(a, b string) float64 {
	jw := JaroWinkler(a, b)
	cos := CosineNGram(a, b, 2)
	if cos > jw {
		return cos
	}
	return jw
}

// IsBrandSimilar reports whether two brand names meet the brand threshold.
func IsBrandSimilar(a, b string) bool {
	return BrandSimilarity(a, b) >= DefaultBrandThreshold
}

// IsProductSimilar reports whether two product descriptions meet the
// product threshold.
func IsProductSimilar(a, b string) bool {
	return ProductSimilarity(a, b) >= DefaultProductThreshold
}

// FindBestBrandMatch scans candidates and returns the highest-scoring one
// meeting threshold. A threshold of zero selects the default.
func FindBestBrandMatch(target string, candidates []string, threshold float64) (string, float64, bool) {
	if threshold <= 0 {
		threshold = DefaultBrandThreshold
	}
	return findBest(target, candidates, threshold, BrandSimilarity)
}

// FindBestProductMatch scans candidates and returns the highest-scoring
// one meeting threshold. A threshold of zero selects the default.
func FindBestProductMatch(target string, candidates []string, threshold float64) (string, float64, bool) {
	if threshold <= 0 {
		threshold = DefaultProductThreshold
	}
	return findBest(target, candidates, threshold, ProductSimilarity)
}

func findBest(target string, candidates []string, threshold float64, score func(a, b string) float64) (string, float64, bool) {
	best := ""
	bestScore := 0.0
	found := false
	for _, c := range candidates {
		s := score(target, c)
		if s < threshold {
			continue
		}
		if !found || s > bestScore {
			best, bestScore, found = c, s, true
		}
	}
	return best, bestScore, found
}

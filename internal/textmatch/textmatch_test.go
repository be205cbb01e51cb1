// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textmatch

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase and trim", "  Acme Foods  ", "acme foods"},
		{"punctuation to spaces", "Acme's Best-Ever Crackers!", "acme s best ever crackers"},
		{"collapse whitespace", "peanut   butter\tcrackers", "peanut butter crackers"},
		{"strip stop words", "Crackers with Peanut Butter and Honey", "crackers peanut butter honey"},
		{"articles stripped", "The Original Cookie", "original cookie"},
		{"all stop words", "of the and", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestJaroWinklerKnownValues(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"martha", "marhta", 0.961},
		{"dixon", "dicksonx", 0.813},
		{"jellyfish", "smellyfish", 0.896},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			got := JaroWinkler(tt.a, tt.b)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("JaroWinkler(%q, %q) = %.4f, want %.3f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestJaroWinklerBounds(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identity", "acme foods", "acme foods", 1.0},
		{"identity after normalization", "Acme Foods!", "acme foods", 1.0},
		{"empty left", "", "acme", 0.0},
		{"empty right", "acme", "", 0.0},
		{"both empty", "", "", 0.0},
		{"stop words only", "the and of", "acme", 0.0},
		{"no shared characters", "zzz", "qqq", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JaroWinkler(tt.a, tt.b); got != tt.want {
				t.Errorf("JaroWinkler = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineNGramBounds(t *testing.T) {
	if got := CosineNGram("peanut butter", "peanut butter", 2); got != 1.0 {
		t.Errorf("identity = %v, want 1.0", got)
	}
	if got := CosineNGram("", "peanut", 2); got != 0.0 {
		t.Errorf("empty = %v, want 0.0", got)
	}
	if got := CosineNGram("a", "ab", 2); got != 0.0 {
		t.Errorf("shorter than n = %v, want 0.0", got)
	}
	if got := CosineNGram("zzzz", "qqqq", 2); got != 0.0 {
		t.Errorf("disjoint grams = %v, want 0.0", got)
	}
}

func TestSimilaritySymmetry(t *testing.T) {
	pairs := [][2]string{
		{"acme foods", "acme food co"},
		{"peanut butter crackers", "peanut butter crunch crackers"},
		{"martha", "marhta"},
		{"", "something"},
	}

	for _, p := range pairs {
		if JaroWinkler(p[0], p[1]) != JaroWinkler(p[1], p[0]) {
			t.Errorf("JaroWinkler(%q, %q) not symmetric", p[0], p[1])
		}
		if CosineNGram(p[0], p[1], 2) != CosineNGram(p[1], p[0], 2) {
			t.Errorf("CosineNGram(%q, %q) not symmetric", p[0], p[1])
		}
	}
}

func TestIsBrandSimilar(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"exact", "Acme Foods", "acme foods", true},
		{"single typo", "Acme Fodos", "acme foods", true},
		{"different brand", "Acme Foods", "Zenith Dairy", false},
		{"empty scan brand", "", "acme foods", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBrandSimilar(tt.a, tt.b); got != tt.want {
				t.Errorf("IsBrandSimilar(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

// Wording drift that defeats Jaro-Winkler's positional matching is caught
// by bigram overlap.
func TestIsProductSimilarNGramCompensation(t *testing.T) {
	a := "Peanut Butter Crackers"
	b := "peanut butter crunch crackers"

	if !IsProductSimilar(a, b) {
		t.Errorf("IsProductSimilar(%q, %q) = false, want true (cosine = %.3f, jw = %.3f)",
			a, b, CosineNGram(a, b, 2), JaroWinkler(a, b))
	}

	if IsProductSimilar("peanut butter crackers", "frozen broccoli florets") {
		t.Error("unrelated products reported similar")
	}
}

func TestFindBestBrandMatch(t *testing.T) {
	candidates := []string{"zenith dairy", "acme foods", "acme farms"}

	best, score, ok := FindBestBrandMatch("Acme Foods", candidates, 0)
	if !ok {
		t.Fatal("expected a match")
	}
	if best != "acme foods" {
		t.Errorf("best = %q, want %q", best, "acme foods")
	}
	if score != 1.0 {
		t.Errorf("score = %v, want 1.0", score)
	}

	_, _, ok = FindBestBrandMatch("Totally Unrelated", candidates, 0)
	if ok {
		t.Error("expected no match for unrelated brand")
	}
}

func TestFindBestProductMatch(t *testing.T) {
	candidates := []string{"frozen broccoli florets", "peanut butter crunch crackers"}

	best, _, ok := FindBestProductMatch("peanut butter crackers", candidates, 0)
	if !ok {
		t.Fatal("expected a match")
	}
	if best != "peanut butter crunch crackers" {
		t.Errorf("best = %q, want %q", best, "peanut butter crunch crackers")
	}

	_, _, ok = FindBestProductMatch("peanut butter crackers", nil, 0)
	if ok {
		t.Error("expected no match for empty candidate list")
	}
}

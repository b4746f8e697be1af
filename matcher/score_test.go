package matcher

import "testing"

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"Organic Honey 12oz", "organic honey 12oz"},
		{"  Honey,  Raw & Organic!  ", "honey raw organic"},
		{"ORGANIC-HONEY", "organic honey"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeName(tc.in); got != tc.expected {
			t.Fatalf("NormalizeName(%q) expected %q, got %q", tc.in, tc.expected, got)
		}
	}
}

func TestScoreNames(t *testing.T) {
	cases := []struct {
		secondary string
		primary   string
		expected  int
	}{
		// identical names hit the fuzzy cap, one below the SKU score
		{"Organic Honey 12oz", "Organic Honey 12oz", 99},
		// a one-letter typo on a long token still counts as the same word
		{"Organc Honey", "Organic Honey", 85},
		// partial overlap plus containment lands in suggestion range
		{"Honey", "Organic Honey 12oz", 58},
		// nothing in common
		{"Blue Corn Chips", "Organic Honey", 0},
		{"", "Organic Honey", 0},
	}
	for _, tc := range cases {
		if got := ScoreNames(tc.secondary, tc.primary); got != tc.expected {
			t.Fatalf("ScoreNames(%q, %q) expected %d, got %d", tc.secondary, tc.primary, tc.expected, got)
		}
	}
}

func TestScoreNames_ShortTokensMatchExactly(t *testing.T) {
	// "oz" vs "az" must not fuzzy-match; one edit on a short unit token is a
	// different word
	withTypo := ScoreNames("Honey oz", "Honey az")
	exact := ScoreNames("Honey oz", "Honey oz")
	if withTypo >= exact {
		t.Fatalf("short-token typo scored %d, exact scored %d", withTypo, exact)
	}
}

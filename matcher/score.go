package matcher

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// Name scoring: case-insensitive, punctuation-stripped token overlap plus a
// substring-containment bonus, scaled to 0-100. Only exact SKU matches reach
// 100, so fuzzy scores are capped just below.
const (
	maxFuzzyScore    = 99
	overlapScale     = 85
	containmentBonus = 15
)

// NormalizeName lowercases, strips punctuation and collapses whitespace.
func NormalizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func tokenize(s string) []string {
	normalized := NormalizeName(s)
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}

// tokensOverlap treats tokens within edit distance 1 as the same word, so
// vendor typos ("organc" vs "organic") still line up. Short tokens must match
// exactly; one edit on a 3-letter unit like "oz" is a different word.
func tokensOverlap(a, b string) bool {
	if a == b {
		return true
	}
	if len(a) < 4 || len(b) < 4 {
		return false
	}
	return levenshtein.ComputeDistance(a, b) <= 1
}

// ScoreNames computes the fuzzy similarity between a secondary product name
// and a primary item name.
func ScoreNames(secondary, primary string) int {
	secTokens := tokenize(secondary)
	priTokens := tokenize(primary)
	if len(secTokens) == 0 || len(priTokens) == 0 {
		return 0
	}

	used := make([]bool, len(priTokens))
	overlap := 0
	for _, st := range secTokens {
		for i, pt := range priTokens {
			if used[i] {
				continue
			}
			if tokensOverlap(st, pt) {
				used[i] = true
				overlap++
				break
			}
		}
	}

	ratio := float64(2*overlap) / float64(len(secTokens)+len(priTokens))
	score := int(ratio*overlapScale + 0.5)

	secNorm := NormalizeName(secondary)
	priNorm := NormalizeName(primary)
	if strings.Contains(secNorm, priNorm) || strings.Contains(priNorm, secNorm) {
		score += containmentBonus
	}

	if score > maxFuzzyScore {
		score = maxFuzzyScore
	}
	return score
}

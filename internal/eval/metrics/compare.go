package metrics

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cartdanawa/pricescan/internal/models"
)

// FieldMatch represents the comparison result for a single field
type FieldMatch struct {
	Expected string  `json:"expected" yaml:"expected"`
	Actual   string  `json:"actual" yaml:"actual"`
	Score    float64 `json:"score" yaml:"score"` // 0.0 to 1.0
	Method   string  `json:"method" yaml:"method"`
	Notes    string  `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// TagComparison is the field-level outcome for one labeled price tag
type TagComparison struct {
	PriceMatch   FieldMatch `json:"price_match" yaml:"pricematch"`
	NameMatch    FieldMatch `json:"name_match" yaml:"namematch"`
	OverallScore float64    `json:"overall_score" yaml:"overallscore"`
}

// Price decides whether a scan lands in the cart at all, so it carries most of
// the overall score.
const (
	priceWeight = 0.7
	nameWeight  = 0.3
)

// CompareTag scores a recognition result against the labeled name and price
func CompareTag(expectedName string, expectedPrice int, actual models.RecognitionResult) *TagComparison {
	actualName := ""
	if actual.ProductName != nil {
		actualName = *actual.ProductName
	}

	c := &TagComparison{
		PriceMatch: comparePrice(expectedPrice, actual.Price),
		NameMatch:  compareField(expectedName, actualName),
	}
	if c.NameMatch.Method == "expected_missing" || c.NameMatch.Method == "both_missing" {
		c.OverallScore = c.PriceMatch.Score
	} else {
		c.OverallScore = priceWeight*c.PriceMatch.Score + nameWeight*c.NameMatch.Score
	}
	return c
}

func comparePrice(expected int, actual *int) FieldMatch {
	match := FieldMatch{Expected: fmt.Sprint(expected)}
	if actual == nil {
		match.Method = "actual_missing"
		match.Notes = "No price recognized"
		return match
	}

	match.Actual = fmt.Sprint(*actual)
	if *actual == expected {
		match.Score = 1.0
		match.Method = "exact"
		return match
	}

	match.Method = "no_match"
	match.Notes = fmt.Sprintf("Off by %d", *actual-expected)
	return match
}

func compareField(expected, actual string) FieldMatch {
	match := FieldMatch{
		Expected: expected,
		Actual:   actual,
	}

	expNorm := normalizeForComparison(expected)
	actNorm := normalizeForComparison(actual)

	if expNorm == "" && actNorm == "" {
		match.Score = 0.5
		match.Method = "both_missing"
		return match
	}
	if expNorm == "" {
		match.Method = "expected_missing"
		match.Notes = "No ground truth"
		return match
	}
	if actNorm == "" {
		match.Method = "actual_missing"
		return match
	}

	if expNorm == actNorm {
		match.Score = 1.0
		match.Method = "exact"
		return match
	}

	if strings.Contains(actNorm, expNorm) || strings.Contains(expNorm, actNorm) {
		match.Score = 0.8
		match.Method = "substring"
		return match
	}

	similarity := calculateSimilarity(expNorm, actNorm)
	match.Score = similarity
	switch {
	case similarity > 0.7:
		match.Method = "fuzzy_high"
	case similarity > 0.4:
		match.Method = "fuzzy_medium"
	default:
		match.Method = "no_match"
	}
	match.Notes = fmt.Sprintf("Similarity %.2f", similarity)
	return match
}

var punctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

func normalizeForComparison(text string) string {
	text = strings.ToLower(text)
	text = punctuation.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// calculateSimilarity returns 1 - distance/maxLen, counted in runes so Hangul
// syllables weigh one each
func calculateSimilarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}
	if s1 == "" || s2 == "" {
		return 0.0
	}

	distance := levenshteinDistance(s1, s2)
	maxLen := max(utf8.RuneCountInString(s1), utf8.RuneCountInString(s2))
	return 1.0 - float64(distance)/float64(maxLen)
}

func levenshteinDistance(s1, s2 string) int {
	a, b := []rune(s1), []rune(s2)
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

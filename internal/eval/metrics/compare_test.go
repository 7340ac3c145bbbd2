package metrics

import (
	"math"
	"testing"

	"github.com/cartdanawa/pricescan/internal/models"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestCompareField(t *testing.T) {
	tests := []struct {
		name           string
		expected       string
		actual         string
		expectedMethod string
		minScore       float64
		maxScore       float64
	}{
		{"exact", "신라면", "신라면", "exact", 1.0, 1.0},
		{"exact ignoring case and punctuation", "Pepsi Zero!", "pepsi  zero", "exact", 1.0, 1.0},
		{"substring", "신라면", "농심 신라면 5입", "substring", 0.8, 0.8},
		{"prefix", "바나나우유", "바나나우유 240ml", "substring", 0.8, 0.8},
		{"one syllable off", "초코파이정", "초코파이칩", "fuzzy_high", 0.79, 0.81},
		{"no match", "사과", "배추김치", "no_match", 0, 0.4},
		{"actual missing", "사과", "", "actual_missing", 0, 0},
		{"expected missing", "", "사과", "expected_missing", 0, 0},
		{"both missing", "", "", "both_missing", 0.5, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := compareField(tt.expected, tt.actual)
			if match.Method != tt.expectedMethod {
				t.Errorf("Expected method %s, got %s", tt.expectedMethod, match.Method)
			}
			if match.Score < tt.minScore || match.Score > tt.maxScore {
				t.Errorf("Expected score in [%.2f, %.2f], got %.3f", tt.minScore, tt.maxScore, match.Score)
			}
		})
	}
}

func TestNormalizeKeepsHangul(t *testing.T) {
	got := normalizeForComparison("  농심, 신라면!  ")
	if got != "농심 신라면" {
		t.Errorf("Expected %q, got %q", "농심 신라면", got)
	}
}

func TestLevenshteinCountsRunes(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"우유", "두유", 1},
		{"신라면", "진라면", 1},
	}
	for _, tt := range tests {
		if got := levenshteinDistance(tt.a, tt.b); got != tt.expected {
			t.Errorf("levenshteinDistance(%q, %q): expected %d, got %d", tt.a, tt.b, tt.expected, got)
		}
	}
}

func TestCompareTag(t *testing.T) {
	tests := []struct {
		name          string
		expectedName  string
		expectedPrice int
		actual        models.RecognitionResult
		priceMethod   string
		overall       float64
	}{
		{
			name:          "all correct",
			expectedName:  "신라면",
			expectedPrice: 4830,
			actual:        models.RecognitionResult{Price: intPtr(4830), ProductName: strPtr("신라면")},
			priceMethod:   "exact",
			overall:       1.0,
		},
		{
			name:          "price only",
			expectedName:  "신라면",
			expectedPrice: 4830,
			actual:        models.RecognitionResult{Price: intPtr(4830)},
			priceMethod:   "exact",
			overall:       0.7,
		},
		{
			name:          "wrong price right name",
			expectedName:  "신라면",
			expectedPrice: 4830,
			actual:        models.RecognitionResult{Price: intPtr(830), ProductName: strPtr("신라면")},
			priceMethod:   "no_match",
			overall:       0.3,
		},
		{
			name:          "unlabeled name scores price alone",
			expectedPrice: 1200,
			actual:        models.RecognitionResult{Price: intPtr(1200), ProductName: strPtr("사과")},
			priceMethod:   "exact",
			overall:       1.0,
		},
		{
			name:          "nothing recognized",
			expectedName:  "우유",
			expectedPrice: 2500,
			actual:        models.RecognitionResult{},
			priceMethod:   "actual_missing",
			overall:       0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := CompareTag(tt.expectedName, tt.expectedPrice, tt.actual)
			if c.PriceMatch.Method != tt.priceMethod {
				t.Errorf("Expected price method %s, got %s", tt.priceMethod, c.PriceMatch.Method)
			}
			if math.Abs(c.OverallScore-tt.overall) > 1e-9 {
				t.Errorf("Expected overall %.2f, got %.3f", tt.overall, c.OverallScore)
			}
		})
	}
}

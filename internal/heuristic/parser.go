// Package heuristic extracts a price and product name from price tag text
// without calling out to the recognition service.
package heuristic

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cartdanawa/pricescan/internal/models"
)

// MinPrice is the exclusive lower bound for a price candidate. Anything at or
// below it is a weight, grade or count ("100g", "1등급").
const MinPrice = 100

// maxNameDigits is the digit count above which a line reads as a price line
const maxNameDigits = 3

var priceRun = regexp.MustCompile(`([\d,]+)\s*(원|₩)?`)

// Parse returns the largest qualifying price and the longest non-price line.
// Ties keep the first value seen.
func Parse(text string) models.RecognitionResult {
	lines := splitLines(text)

	result := models.RecognitionResult{RawText: text}

	maxPrice := 0
	for _, line := range lines {
		for _, m := range priceRun.FindAllStringSubmatch(line, -1) {
			digits := strings.ReplaceAll(m[1], ",", "")
			if digits == "" {
				continue
			}
			// runs too long for an int are OCR noise, not prices
			n, err := strconv.Atoi(digits)
			if err != nil || n <= MinPrice {
				continue
			}
			if n > maxPrice {
				maxPrice = n
			}
		}
	}
	if maxPrice > 0 {
		result.Price = &maxPrice
	}

	name := ""
	nameLen := 0
	for _, line := range lines {
		if priceLike(line) {
			continue
		}
		if n := utf8.RuneCountInString(line); n > nameLen {
			name, nameLen = line, n
		}
	}
	if name != "" {
		result.ProductName = &name
	}

	return result
}

func splitLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func priceLike(line string) bool {
	digits := 0
	for _, r := range line {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits > maxNameDigits && priceRun.MatchString(line)
}

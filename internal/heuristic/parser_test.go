package heuristic

import (
	"reflect"
	"testing"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantPrice *int
		wantName  *string
	}{
		{
			name:      "korean price tag with weight",
			text:      "한우 등심\n4,830원\n100g",
			wantPrice: intPtr(4830),
			wantName:  strPtr("한우 등심"),
		},
		{
			name:      "largest qualifying price wins",
			text:      "서울우유 1L\n정상가 3,200원\n할인가 2,980원",
			wantPrice: intPtr(3200),
			wantName:  strPtr("서울우유 1L"),
		},
		{
			name:      "values at threshold are discarded",
			text:      "사과 부사\n100원\n1등급",
			wantPrice: nil,
			wantName:  strPtr("사과 부사"),
		},
		{
			name:      "won sign marker",
			text:      "Coffee Beans\n₩12,500",
			wantPrice: intPtr(12500),
			wantName:  strPtr("Coffee Beans"),
		},
		{
			name:      "blank lines and padding ignored",
			text:      "\n   \n  두부  \n\n 1,500 원 \n",
			wantPrice: intPtr(1500),
			wantName:  strPtr("두부"),
		},
		{
			name:      "empty input",
			text:      "",
			wantPrice: nil,
			wantName:  nil,
		},
		{
			name:      "only price lines",
			text:      "12,000원\n8800",
			wantPrice: intPtr(12000),
			wantName:  nil,
		},
		{
			name:      "lone commas are not prices",
			text:      ",,,\n감자튀김",
			wantPrice: nil,
			wantName:  strPtr("감자튀김"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			if deref(got.Price) != deref(tt.wantPrice) {
				t.Errorf("Expected price %v, got %v", deref(tt.wantPrice), deref(got.Price))
			}
			if deref(got.ProductName) != deref(tt.wantName) {
				t.Errorf("Expected name %v, got %v", deref(tt.wantName), deref(got.ProductName))
			}
			if got.RawText != tt.text {
				t.Errorf("Expected raw text to be preserved, got %q", got.RawText)
			}
		})
	}
}

func TestParseExcludesLongestLineWithManyDigits(t *testing.T) {
	got := Parse("우유\n바코드 8801234567890 유통기한")
	if got.ProductName == nil || *got.ProductName != "우유" {
		t.Errorf("Expected name 우유, got %v", deref(got.ProductName))
	}
}

func TestParseKeepsLineWithFewDigits(t *testing.T) {
	// three digits is still a name candidate
	got := Parse("콜라 500ml\n2,100원")
	if got.ProductName == nil || *got.ProductName != "콜라 500ml" {
		t.Errorf("Expected name 콜라 500ml, got %v", deref(got.ProductName))
	}
	if got.Price == nil || *got.Price != 2100 {
		t.Errorf("Expected price 2100, got %v", deref(got.Price))
	}
}

func TestParseTieBreaksKeepFirst(t *testing.T) {
	got := Parse("배추\n무우\n5,000원\n5000")
	if got.ProductName == nil || *got.ProductName != "배추" {
		t.Errorf("Expected first equal-length line, got %v", deref(got.ProductName))
	}
	if got.Price == nil || *got.Price != 5000 {
		t.Errorf("Expected price 5000, got %v", deref(got.Price))
	}
}

func TestParseDeterministic(t *testing.T) {
	inputs := []string{
		"한우 등심\n4,830원\n100g",
		"random 9 text\n\n1,2,3,4\n원원",
		"₩ 99999999999999999999999",
	}
	for _, in := range inputs {
		first := Parse(in)
		for i := 0; i < 5; i++ {
			if again := Parse(in); !reflect.DeepEqual(first, again) {
				t.Fatalf("Parse(%q) not deterministic: %+v vs %+v", in, first, again)
			}
		}
	}
}

func TestParseDropsOverflowingRuns(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantPrice *int
	}{
		{name: "only run overflows", text: "99999999999999999999원", wantPrice: nil},
		{name: "overflow next to real price", text: "라면\n3,500원\n99999999999999999999", wantPrice: intPtr(3500)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			if !reflect.DeepEqual(got.Price, tt.wantPrice) {
				t.Errorf("Expected price %v, got %v", deref(tt.wantPrice), deref(got.Price))
			}
		})
	}
}

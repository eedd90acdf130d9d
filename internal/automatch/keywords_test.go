package automatch

import (
	"reflect"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"drops jargon and short words", "POS DEBIT PURCHASE NETFLIX.COM CA", []string{"netflix", "com"}},
		{"strips digits and symbols", "TRADER JOE'S #553", []string{"trader", "joe"}},
		{"stop words only", "payment for the card", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractKeywords(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("extractKeywords(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestKeywordsOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want bool
	}{
		{"direct match", []string{"netflix", "subscription"}, []string{"netflix"}, true},
		{"substring both ways", []string{"spotifyusa"}, []string{"spotify"}, true},
		{"short tokens never partial-match", []string{"joe"}, []string{"joes"}, false},
		{"no overlap", []string{"costco"}, []string{"netflix"}, false},
		{"empty side", nil, []string{"netflix"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := keywordsOverlap(tt.a, tt.b); got != tt.want {
				t.Errorf("keywordsOverlap(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

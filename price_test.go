package main

import "testing"

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"$499.99", 499.99, true},
		{"$1,079.00", 1079.00, true},
		{"499.99", 499.99, true},
		{"+ $5.99 shipping", 5.99, true},
		{"EUR 12,49", 1249, true}, // comma treated as thousands separator
		{"0", 0, true},
		{"", 0, false},
		{"FREE Shipping", 0, false},
		{"no number here", 0, false},
	}

	for _, tt := range tests {
		got, ok := parsePrice(tt.in)
		if ok != tt.wantOK {
			t.Errorf("parsePrice(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("parsePrice(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

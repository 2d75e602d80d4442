package models

import "testing"

func TestNormalizeDateFilter(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"2026-03-15", "2026-03-15", true},
		{"03/15/2026", "2026-03-15", true},
		{"  2026-03-15  ", "2026-03-15", true},
		{"", "", false},
		{"last tuesday", "", false},
		{"2026-13-40", "", false},
	}

	for _, tt := range tests {
		got, ok := NormalizeDateFilter(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NormalizeDateFilter(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

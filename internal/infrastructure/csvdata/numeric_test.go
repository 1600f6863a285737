package csvdata

import (
	"errors"
	"testing"

	"github.com/solscope/token-analyzer/internal/domain/entities"
)

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"plain integer", "42", 42},
		{"plain float", "2.5", 2.5},
		{"negative", "-3.5", -3.5},
		{"thousands separators", "16,953.45", 16953.45},
		{"currency symbol", "$1,234.56", 1234.56},
		{"unit suffix", "12.5 SOL", 12.5},
		{"leading whitespace", " 0.25", 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNumeric(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseNumeric(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseNumeric_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty string", ""},
		{"letters only", "abc"},
		{"multiple dots", "1.2.3"},
		{"symbols only", "$,"},
		{"stray minus", "1-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseNumeric(tt.input)
			if err == nil {
				t.Fatalf("expected error for %q", tt.input)
			}
			var parseErr *entities.ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("expected ParseError, got %T", err)
			}
		})
	}
}

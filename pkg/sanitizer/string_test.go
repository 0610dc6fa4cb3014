package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "Leak Repair", "Leak Repair"},
		{"leading and trailing", "  Leak Repair  ", "Leak Repair"},
		{"internal runs", "Leak   Repair\t\tService", "Leak Repair Service"},
		{"empty", "", ""},
		{"only whitespace", "   \t\n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.expected {
				t.Errorf("TrimAndNormalize(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Alice@Example.COM", "alice@example.com"},
		{"  bob@home.io ", "bob@home.io"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeEmail(tt.input); got != tt.expected {
			t.Errorf("NormalizeEmail(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestNormalizeCategory(t *testing.T) {
	if got := NormalizeCategory(" Pest-Control "); got != "pest-control" {
		t.Errorf("NormalizeCategory = %q, expected %q", got, "pest-control")
	}
}

package feed

import "testing"

func TestParseAmount_AcceptsFormattedStrings(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"20000", "20000"},
		{"20,000", "20000"},
		{"$ 1,234.50", "1234.5"},
		{"USD -20,000", "-20000"},
		{"  12.0000  ", "12"},
		{"(45)", "-45"},
		{"0", "0"},
	}
	for _, tc := range cases {
		d, err := ParseAmount(tc.in)
		if err != nil {
			t.Fatalf("ParseAmount(%q) error: %v", tc.in, err)
		}
		if d.String() != tc.expected {
			t.Fatalf("ParseAmount(%q) expected %s, got %s", tc.in, tc.expected, d.String())
		}
	}
}

func TestParseAmount_RejectsEmptyAndNonNumeric(t *testing.T) {
	for _, in := range []string{"", "   ", "n/a", "-"} {
		if _, err := ParseAmount(in); err == nil {
			t.Fatalf("ParseAmount(%q) expected error, got none", in)
		}
	}
}

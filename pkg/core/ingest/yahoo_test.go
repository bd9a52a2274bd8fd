package ingest

import "testing"

func TestParseAbbreviatedNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"123.45", 123.45},
		{"1,234,567", 1234567},
		{"2.5K", 2500},
		{"15.3M", 15.3e6},
		{"1.2B", 1.2e9},
		{"3.021T", 3.021e12},
		{" 0.95 ", 0.95},
	}
	for _, tc := range cases {
		got, err := parseAbbreviatedNumber(tc.in)
		if err != nil {
			t.Errorf("parseAbbreviatedNumber(%q) error = %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseAbbreviatedNumber(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseAbbreviatedNumberRejectsPlaceholders(t *testing.T) {
	for _, in := range []string{"", "N/A", "--", "abc"} {
		if _, err := parseAbbreviatedNumber(in); err == nil {
			t.Errorf("parseAbbreviatedNumber(%q) expected error", in)
		}
	}
}

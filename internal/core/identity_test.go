package core

import "testing"

func TestNormalizeAadhaar(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"123456789012", "123456789012"},
		{"1234 5678 9012", "123456789012"},
		{"1234-5678-9012", "123456789012"},
		{" 1234 5678 9012 ", "123456789012"},
		{"12ab34", "1234"}, // malformed source: shorter than 12, caller treats as no-match
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeAadhaar(c.in); got != c.want {
			t.Errorf("NormalizeAadhaar(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestExtractApplicationNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		// issued numbers contain hyphens; only " - " separates display fields
		{"PUB-00042 - Ravi Kumar - ₹ 5000.00", "PUB-00042"},
		{"DST-00001 - Chennai - ₹ 7000.00", "DST-00001"},
		{"INS-00003 - St. Mary's - ₹ 2500.00", "INS-00003"},
		// hyphenated names past the first separator never leak into the number
		{"PUB-00007 - Anna-Marie Joseph - ₹ 100.00", "PUB-00007"},
		{"A123 - Some District - ₹ 7000.00", "A123"},
		{"A123", "A123"},
		{"  A123  ", "A123"},
		{"", ""},
	}
	for _, c := range cases {
		if got := ExtractApplicationNumber(c.in); got != c.want {
			t.Errorf("ExtractApplicationNumber(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRecipientKey(t *testing.T) {
	display := "A123 - Chennai - ₹ 7000.00"

	// district keys on the whole display string: two aid lines can share an
	// application number while meaning different aid types
	if got := RecipientKey("District", display); got != display {
		t.Errorf("RecipientKey(District) = %q, want full display string", got)
	}

	// everyone else keys on the extracted number
	if got := RecipientKey("Public", display); got != "A123" {
		t.Errorf("RecipientKey(Public) = %q, want %q", got, "A123")
	}

	// empty rows are untracked
	if got := RecipientKey("Public", "   "); got != "" {
		t.Errorf("RecipientKey(Public, blank) = %q, want empty", got)
	}
}

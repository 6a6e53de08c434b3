package validate

import "testing"

func TestNationalID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid uppercase", "A123456789", true},
		{"valid lowercase", "a123456789", true},
		{"too short", "A12345678", false},
		{"too long", "A1234567890", false},
		{"leading digit", "1123456789", false},
		{"two letters", "AB23456789", false},
		{"trailing letter", "A12345678B", false},
		{"embedded valid substring", "xA123456789", false},
		{"trailing garbage", "A123456789x", false},
		{"empty", "", false},
		{"whitespace padded", " A123456789", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NationalID(tt.input); got != tt.want {
				t.Errorf("NationalID(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"exactly ten digits", "0912345678", true},
		{"more than ten digits", "09123456789", true},
		{"ten digits then letters", "0912345678ext", true},
		{"nine digits", "091234567", false},
		{"leading letter", "a912345678", false},
		{"leading space", " 0912345678", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Phone(tt.input); got != tt.want {
				t.Errorf("Phone(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

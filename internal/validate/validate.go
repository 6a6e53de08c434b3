// Package validate checks user-supplied identity fields before they are sent
// to the account service.
package validate

import "regexp"

var (
	// nationalIDRegex matches a Taiwanese national ID: one letter followed by
	// nine digits, with nothing before or after.
	nationalIDRegex = regexp.MustCompile(`^[A-Za-z]\d{9}$`)

	// phoneRegex matches ten digits at the start of the input. The original
	// registration form accepted trailing characters after the digits, so the
	// pattern is deliberately unanchored at the end.
	phoneRegex = regexp.MustCompile(`^\d{10}`)
)

// NationalID reports whether s is a well-formed national ID.
// The whole string must match, partial matches are rejected.
func NationalID(s string) bool {
	return nationalIDRegex.MatchString(s)
}

// Phone reports whether s starts with a ten-digit phone number.
func Phone(s string) bool {
	return phoneRegex.MatchString(s)
}

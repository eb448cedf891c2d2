package filter

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrPostcodeRequired is returned for a blank postcode.
	ErrPostcodeRequired = errors.New("please enter a postcode")
	// ErrPostcodeInvalid is returned when the postcode is not UK-shaped.
	ErrPostcodeInvalid = errors.New("please enter a valid UK postcode")
)

var postcodePattern = regexp.MustCompile(`(?i)^[A-Z]{1,2}\d[A-Z\d]? ?\d[A-Z]{2}$`)

// ValidatePostcode checks code against the UK postcode shape and returns it
// trimmed and upper-cased.
func ValidatePostcode(code string) (string, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "", ErrPostcodeRequired
	}
	if !postcodePattern.MatchString(trimmed) {
		return "", ErrPostcodeInvalid
	}
	return strings.ToUpper(trimmed), nil
}

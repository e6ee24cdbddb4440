package ean

import (
	"fmt"
	"regexp"
)

// Candidate digit-run lengths, checked in this order.
var runPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(\d{8})\b`),
	regexp.MustCompile(`\b(\d{12})\b`),
	regexp.MustCompile(`\b(\d{13})\b`),
}

// ExtractCandidate scans OCR output for contiguous digit runs of 8, 12 or
// 13 digits and returns the first run that passes checksum validation, or
// the empty string.
func ExtractCandidate(text string) string {
	for _, re := range runPatterns {
		for _, match := range re.FindAllString(text, -1) {
			if Validate(match) {
				return match
			}
		}
	}
	return ""
}

// Validate checks an EAN code against its check digit: the remaining
// digits are summed with alternating weights 1,3 starting at weight 1,
// and (10 - sum mod 10) mod 10 must equal the dropped check digit.
// Strings outside 8..13 digits are rejected outright.
func Validate(code string) bool {
	if len(code) < 8 || len(code) > 13 {
		return false
	}
	sum := 0
	for i := 0; i < len(code)-1; i++ {
		d := code[i]
		if d < '0' || d > '9' {
			return false
		}
		weight := 1
		if i%2 == 1 {
			weight = 3
		}
		sum += int(d-'0') * weight
	}
	check := code[len(code)-1]
	if check < '0' || check > '9' {
		return false
	}
	return (10-sum%10)%10 == int(check-'0')
}

// Placeholder is the deterministic identifier assigned to a row when no
// candidate code validates. Items must always carry some identifier.
func Placeholder(prefix string, rowIndex int) string {
	return fmt.Sprintf("%s_%d", prefix, rowIndex)
}

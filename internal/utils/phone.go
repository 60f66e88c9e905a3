package utils

import (
	"regexp"
	"strings"
)

var phoneRegex = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
var nonPhoneChars = regexp.MustCompile(`[^\d+]`)

func IsValidPhone(phone string) bool {
	cleaned := nonPhoneChars.ReplaceAllString(phone, "")
	return phoneRegex.MatchString(cleaned)
}

// NormalizePhone strips formatting so numbers entered on different devices
// compare equal. Used by the reporter identity fallback.
func NormalizePhone(phone string) string {
	normalized := nonPhoneChars.ReplaceAllString(phone, "")
	normalized = strings.TrimPrefix(normalized, "+")
	return normalized
}

// SamePhone reports whether two raw phone strings refer to the same number.
func SamePhone(a, b string) bool {
	na, nb := NormalizePhone(a), NormalizePhone(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb
}

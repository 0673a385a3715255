package utils

import (
	"regexp"
	"strings"
)

var hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// IsValidHexColor checks if the provided string is a 6-digit hex color
// (e.g. #AABBCC).
func IsValidHexColor(color string) bool {
	return hexColorRegex.MatchString(color)
}

// AddressFromUserID returns the full address for a user on the given
// domain. Example: "alice" -> "alice@mailme.com".
func AddressFromUserID(userID, domain string) string {
	return userID + "@" + domain
}

// UserIDFromAddress extracts the user ID from an address, but only if it
// belongs to the given mail domain. Returns "" and false for addresses
// that are malformed or belong to a foreign domain.
func UserIDFromAddress(address, domain string) (string, bool) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(address)), "@")
	if len(parts) != 2 || parts[0] == "" {
		return "", false
	}
	if parts[1] != strings.ToLower(domain) {
		return "", false
	}
	return parts[0], true
}

package ratelimit

import "strings"

// KeyForUser builds a limiter key for an external user ID.
func KeyForUser(externalID string) string {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return ""
	}
	return "u:" + externalID
}

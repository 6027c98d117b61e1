package validate

import (
	"strconv"
	"strings"
)

// ID parses a positive integer resource identifier from a path segment.
func ID(s string) (int, bool) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Page parses a 1-based page or limit parameter with a default.
func Page(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}

package utils

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
)

// HashString generates a SHA1 hash of a string
func HashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}

var safeSegmentRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// SafeSegment returns s if it is safe to use as a single path segment,
// otherwise a hash of it. Used to derive blob paths from external ids.
func SafeSegment(s string) string {
	if s != "" && safeSegmentRe.MatchString(s) && s != "." && s != ".." {
		return s
	}
	return HashString(s)
}

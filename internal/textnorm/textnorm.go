// Package textnorm prepares raw recruiting documents for extraction:
// word-limit truncation and cache fingerprinting.
package textnorm

import (
	"fmt"
	"strings"
	"unicode"
)

// TruncationMarker is appended to documents cut at the word limit.
const TruncationMarker = "[Truncated]"

// fingerprintPrefixLen is the number of leading characters that feed the
// cache fingerprint. Collisions require both the prefix and the total
// length to coincide, which is acceptable for a non-security cache key.
const fingerprintPrefixLen = 100

// Truncate limits text to maxWords whitespace-separated words. Text within
// the limit is returned unchanged; longer text is cut and marked.
func Truncate(text string, maxWords int) string {
	if maxWords <= 0 {
		return text
	}

	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}

	return strings.Join(words[:maxWords], " ") + "\n\n" + TruncationMarker
}

// Fingerprint derives a deterministic cache key from the text: the first
// 100 characters with whitespace removed, joined with the total length.
// It is a lookup key only, never an identity for stored entities.
func Fingerprint(text string) string {
	runes := []rune(text)

	prefix := runes
	if len(prefix) > fingerprintPrefixLen {
		prefix = prefix[:fingerprintPrefixLen]
	}

	var b strings.Builder
	for _, r := range prefix {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}

	return fmt.Sprintf("%s_%d", b.String(), len(runes))
}

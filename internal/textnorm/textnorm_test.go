package textnorm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateShortTextUnchanged(t *testing.T) {
	text := "SAP FICO consultant with 5 years of experience"
	assert.Equal(t, text, Truncate(text, 3000))
}

func TestTruncateCutsAtWordLimitWithMarker(t *testing.T) {
	words := make([]string, 10)
	for i := range words {
		words[i] = "module"
	}
	text := strings.Join(words, " ")

	got := Truncate(text, 4)

	assert.Equal(t, "module module module module\n\n"+TruncationMarker, got)
}

func TestTruncateCollapsesWhitespaceOnlyWhenCutting(t *testing.T) {
	text := "one\ttwo\n three"

	// Under the limit the original spacing survives.
	assert.Equal(t, text, Truncate(text, 3))

	// Over the limit the kept words are re-joined with single spaces.
	assert.Equal(t, "one two\n\n"+TruncationMarker, Truncate(text, 2))
}

func TestTruncateZeroLimitReturnsUnchanged(t *testing.T) {
	assert.Equal(t, "a b c", Truncate("a b c", 0))
}

func TestFingerprintDeterministic(t *testing.T) {
	text := "Senior SAP MM consultant, Dallas TX"
	assert.Equal(t, Fingerprint(text), Fingerprint(text))
}

func TestFingerprintStripsWhitespaceFromPrefix(t *testing.T) {
	assert.Equal(t, "abc_5", Fingerprint("a b c"))
	assert.Equal(t, "abc_6", Fingerprint("a\tb\nc "))
}

func TestFingerprintDistinguishesByLength(t *testing.T) {
	// Same 100-char prefix, different tails.
	base := strings.Repeat("x", 100)
	assert.NotEqual(t, Fingerprint(base+"1"), Fingerprint(base+"22"))
}

func TestFingerprintCollidesOnPrefixAndLength(t *testing.T) {
	// Documented false-positive risk: identical prefix and length collide.
	base := strings.Repeat("x", 100)
	assert.Equal(t, Fingerprint(base+"aaa"), Fingerprint(base+"bbb"))
}

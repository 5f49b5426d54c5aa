// Package slug derives URL-safe slugs and random suffixes for uniqueness
// retries. The randomness is a uniqueness aid, not a security boundary, so
// math/rand is fine here.
package slug

import (
	"math/rand"
	"strings"
	"unicode"
)

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Make lowercases s and collapses every run of non-alphanumeric characters
// into a single hyphen, trimming leading and trailing hyphens.
func Make(s string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// Random returns a random lowercase-alphanumeric string of length n.
func Random(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = suffixAlphabet[rand.Intn(len(suffixAlphabet))]
	}
	return string(b)
}

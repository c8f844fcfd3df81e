package security

import (
	"bytes"
	"strings"
)

// MinRecommendedKeyLen is the HS256 key length below which WeakKeyReason
// complains. Shorter keys still sign; this is advisory only.
const MinRecommendedKeyLen = 32

var weakWords = []string{
	"password", "secret", "changeme", "letmein", "welcome", "admin",
	"qwerty", "dragon", "monkey", "default", "example", "sample",
	"test", "demo", "guest", "token",
}

var keyboardRuns = []string{
	"qwertyuiop", "asdfghjkl", "zxcvbnm", "1234567890",
	"qwertz", "azerty",
}

// IsWeakKey reports whether key should draw a warning.
func IsWeakKey(key []byte) bool {
	return WeakKeyReason(key) != ""
}

// WeakKeyReason explains why key is weak, or returns "" for a key that passes
// every check. The empty key is reported as weak even though signing accepts it.
func WeakKeyReason(key []byte) string {
	switch {
	case len(key) == 0:
		return "key is empty"
	case allSame(key):
		return "key repeats a single byte"
	case len(key) < MinRecommendedKeyLen:
		return "key is shorter than 32 bytes"
	case repeatsShortPattern(key):
		return "key repeats a short pattern"
	case isSequence(key):
		return "key starts with an ascending or descending run"
	case lowUniqueness(key):
		return "key has too few distinct bytes"
	}

	lower := strings.ToLower(string(key))
	for _, w := range weakWords {
		if strings.Contains(lower, w) {
			return "key contains the common word " + `"` + w + `"`
		}
	}
	for _, run := range keyboardRuns {
		if strings.Contains(lower, run) || strings.Contains(lower, reverse(run)) {
			return "key contains a keyboard run"
		}
	}
	return ""
}

func allSame(key []byte) bool {
	for _, b := range key[1:] {
		if b != key[0] {
			return false
		}
	}
	return true
}

// repeatsShortPattern matches keys like "abcabcabc" built from a 2-4 byte unit.
func repeatsShortPattern(key []byte) bool {
	for unit := 2; unit <= 4; unit++ {
		if len(key) < unit*3 {
			break
		}
		pattern := key[:unit]
		ok := true
		for i := unit; i < len(key); i += unit {
			end := min(i+unit, len(key))
			if !bytes.Equal(key[i:end], pattern[:end-i]) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func isSequence(key []byte) bool {
	if len(key) < 8 {
		return false
	}
	up, down := true, true
	for i := 1; i < 8; i++ {
		if key[i] != key[i-1]+1 {
			up = false
		}
		if key[i] != key[i-1]-1 {
			down = false
		}
	}
	return up || down
}

func lowUniqueness(key []byte) bool {
	var seen [256]bool
	unique := 0
	for _, b := range key {
		if !seen[b] {
			seen[b] = true
			unique++
		}
	}
	return float64(unique)/float64(len(key)) < 0.3
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

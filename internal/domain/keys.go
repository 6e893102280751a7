package domain

import "strings"

// pairKeySep separates the two addresses inside a chat pair key. Addresses
// are hex or bech32 style identifiers and never contain NUL, so the
// concatenation stays injective.
const pairKeySep = "\x00"

// CanonicalPair orders two addresses under lexicographic byte comparison.
// The result is independent of argument order, which makes every derived
// value (pair key, stored participants) identical no matter which side of
// a conversation acts first.
func CanonicalPair(a, b string) (first, second string) {
	if strings.Compare(a, b) <= 0 {
		return a, b
	}
	return b, a
}

// PairKey builds the chat registry key for an unordered address pair.
// PairKey(a, b) == PairKey(b, a) always holds.
func PairKey(a, b string) string {
	first, second := CanonicalPair(a, b)
	return first + pairKeySep + second
}

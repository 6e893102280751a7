package utils

// ClipRunes truncates s to at most max runes. A max <= 0 disables
// clipping. Operating on runes rather than bytes keeps multi-byte
// content (and the 100-rune event previews built from it) intact.
func ClipRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

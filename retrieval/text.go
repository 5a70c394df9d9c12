package retrieval

// truncateRunes limits a string to maxRunes runes, cutting on a rune
// boundary so multibyte characters are never split.
func truncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == maxRunes {
			return s[:i]
		}
		count++
	}
	return s
}

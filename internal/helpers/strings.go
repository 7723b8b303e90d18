package helpers

import "unicode/utf8"

// Truncate shortens the given string to at most n bytes, appending "..." if truncation occurs.
// Multi-byte characters are never split.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return cutAtRune(s, n)
	}
	return cutAtRune(s, n-3) + "..."
}

// cutAtRune returns the longest prefix of s no longer than n bytes that ends on a rune boundary.
func cutAtRune(s string, n int) string {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

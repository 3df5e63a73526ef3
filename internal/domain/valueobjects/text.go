package valueobjects

import "unicode/utf8"

// Clip returns the left-most max characters of s.
//
// Characters are counted as runes so multi-byte input is never split
// in the middle of a code point. A non-positive max leaves s unchanged.
func Clip(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}

	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// ClipPtr clips a nullable string, keeping nil as nil.
func ClipPtr(s *string, max int) *string {
	if s == nil {
		return nil
	}
	clipped := Clip(*s, max)
	return &clipped
}

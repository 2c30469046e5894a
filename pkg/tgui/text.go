package tgui

import "unicode/utf8"

// TruncRunes returns s truncated to at most n runes, with a trailing
// ellipsis when anything was cut. Alert bodies embed user-written text,
// so the cut has to land on a rune boundary, never mid-encoding.
func TruncRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	// One pass: remember where the n-th rune ends; meeting an (n+1)-th
	// rune means we cut there.
	count := 0
	cut := 0
	for i, r := range s {
		count++
		if count == n {
			cut = i + utf8.RuneLen(r)
			continue
		}
		if count > n {
			if cut <= 0 {
				cut = i
			}
			return s[:cut] + "…"
		}
	}
	return s
}

package tree

import "strings"

// equalFoldUnicode reports whether a and b are equal under Unicode case
// folding. Object-key comparisons in BSON documents are plain UTF-8 text,
// not bytes needing a bespoke ASCII table, so the standard library's fold
// compare is used directly rather than reimplementing one.
func equalFoldUnicode(a, b string) bool {
	return strings.EqualFold(a, b)
}

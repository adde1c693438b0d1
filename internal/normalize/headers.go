package normalize

import "strings"

// Header lower-cases and trims a column name. A UTF-8 BOM left on the first
// header by some spreadsheet exports is dropped too.
func Header(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}

// Headers applies Header to every name.
func Headers(hs []string) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = Header(h)
	}
	return out
}

package normalize

import "strings"

// nullTokens are the spreadsheet and dataframe spellings of a missing
// value. Matching is exact and case-sensitive.
var nullTokens = map[string]bool{
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// Cell trims a raw cell and maps null tokens to the empty string.
func Cell(v string) string {
	v = strings.TrimSpace(v)
	if nullTokens[v] {
		return ""
	}
	return v
}

package normalize

import (
	"regexp"
	"strings"
)

// DefaultDegenerativeKeywords are the conditions flagged as degenerative.
var DefaultDegenerativeKeywords = []string{
	"motor neurone",
	"multiple sclerosis",
	"muscular dystrophy",
	"huntington",
}

// Classifier flags primary-disability text that mentions a degenerative condition.
type Classifier struct {
	re *regexp.Regexp
}

// NewClassifier compiles a case-insensitive alternation of keywords.
// A list with no usable keyword falls back to DefaultDegenerativeKeywords.
func NewClassifier(keywords []string) *Classifier {
	quoted := quoteKeywords(keywords)
	if len(quoted) == 0 {
		quoted = quoteKeywords(DefaultDegenerativeKeywords)
	}
	return &Classifier{re: regexp.MustCompile(`(?i)(` + strings.Join(quoted, "|") + `)`)}
}

// Degenerative reports whether text matches any keyword. Nil text is false.
func (c *Classifier) Degenerative(text *string) bool {
	if text == nil {
		return false
	}
	return c.re.MatchString(*text)
}

func quoteKeywords(keywords []string) []string {
	quoted := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			quoted = append(quoted, regexp.QuoteMeta(k))
		}
	}
	return quoted
}

package screening

import (
	"regexp"
	"strings"
)

// Kind names a family of spam or abuse signals
type Kind string

const (
	KindPharmaceutical Kind = "pharmaceutical"
	KindFinancial      Kind = "financial"
	KindUrgency        Kind = "urgency"
	KindMarkup         Kind = "markup"
)

// Pattern is one row of the screening table
type Pattern struct {
	Kind Kind
	Expr *regexp.Regexp
}

// Match describes the first pattern that hit
type Match struct {
	Kind Kind
	Term string
}

// DefaultPatterns is the built-in table. Order is significant only for which
// match gets reported; any hit rejects the submission.
var DefaultPatterns = []Pattern{
	{KindPharmaceutical, regexp.MustCompile(`viagra|cialis|pharmacy`)},
	{KindFinancial, regexp.MustCompile(`bitcoin|cryptocurrency|investment`)},
	{KindUrgency, regexp.MustCompile(`urgent|act now|limited time`)},
	{KindMarkup, regexp.MustCompile(`<script|javascript:|onclick|\bon[a-z]+\s*=`)},
}

// Screener tests text against a fixed pattern table
type Screener struct {
	patterns []Pattern
}

// New creates a screener over patterns; nil means DefaultPatterns
func New(patterns []Pattern) *Screener {
	if patterns == nil {
		patterns = DefaultPatterns
	}
	return &Screener{patterns: patterns}
}

// Screen lowercases subject and message into one buffer and reports the
// first matching pattern, if any.
func (s *Screener) Screen(subject, message string) (Match, bool) {
	buffer := strings.ToLower(subject + " " + message)
	for _, p := range s.patterns {
		if loc := p.Expr.FindStringIndex(buffer); loc != nil {
			return Match{Kind: p.Kind, Term: buffer[loc[0]:loc[1]]}, true
		}
	}
	return Match{}, false
}

package screening

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScreen_FlagsEachKind(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		message string
		kind    Kind
	}{
		{"viagra in message", "Hello", "Buy cheap viagra now!!!", KindPharmaceutical},
		{"viagra mixed case", "Hi", "best ViAgRa deals", KindPharmaceutical},
		{"pharmacy in subject", "Online PHARMACY", "regular text here", KindPharmaceutical},
		{"bitcoin", "Opportunity", "Double your Bitcoin in a week", KindFinancial},
		{"investment", "Partnership", "a great investment for you", KindFinancial},
		{"urgent", "URGENT reply needed", "please respond soon", KindUrgency},
		{"act now", "Offer", "Act now before it is gone", KindUrgency},
		{"script tag", "hi", `<script>alert(1)</script>`, KindMarkup},
		{"javascript url", "hi", `click javascript:void(0)`, KindMarkup},
		{"onclick", "hi", `<a onclick="x()">`, KindMarkup},
		{"onerror handler", "hi", `<img src=x onerror = "x()">`, KindMarkup},
	}

	s := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, flagged := s.Screen(tt.subject, tt.message)
			assert.True(t, flagged)
			assert.Equal(t, tt.kind, match.Kind)
		})
	}
}

func TestScreen_CleanMessage(t *testing.T) {
	_, flagged := New(nil).Screen("Freelance project", "Hi! I'd like a quote for a small marketing site, launching in spring.")
	assert.False(t, flagged)
}

func TestScreen_ViagraAlwaysFlaggedRegardlessOfOtherContent(t *testing.T) {
	s := New(nil)
	for _, subject := range []string{"", "Project inquiry", "Re: your talk"} {
		match, flagged := s.Screen(subject, "Some words VIAGRA more words")
		assert.True(t, flagged)
		assert.Equal(t, KindPharmaceutical, match.Kind)
		assert.Equal(t, "viagra", match.Term)
	}
}

func TestScreen_CustomTable(t *testing.T) {
	s := New([]Pattern{{Kind: "custom", Expr: regexp.MustCompile(`casino`)}})

	_, flagged := s.Screen("hi", "buy viagra")
	assert.False(t, flagged)

	match, flagged := s.Screen("CASINO bonus", "hello")
	assert.True(t, flagged)
	assert.Equal(t, Kind("custom"), match.Kind)
}

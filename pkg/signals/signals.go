// Package signals holds the keyword detectors and the contact extractor that
// feed conversation stage classification. Every function is pure.
package signals

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/papercomputeco/leadline/pkg/conversation"
	"github.com/papercomputeco/leadline/pkg/llm"
)

// Language of the conversation.
type Language string

const (
	English Language = "en"
	Spanish Language = "es"
)

var (
	topicTagRE      = regexp.MustCompile(`^\s*(?:\[[^\]]*\]|\([^)]*\)|#\S+)\s*`)
	whitespaceRE    = regexp.MustCompile(`\s+`)
	apostropheNorms = strings.NewReplacer("’", "'", "‘", "'")
)

// DetectLanguage returns Spanish when the query or history carries Spanish
// markers and no English markers. Markers are plain substrings, so
// "programa" also counts as the English "program".
func DetectLanguage(query string, history []llm.Message) Language {
	text := joined(query, history)
	if containsAny(text, spanishMarkers) && !containsAny(text, englishMarkers) {
		return Spanish
	}
	return English
}

// PricingInquiry reports whether the query asks about tuition or fees.
func PricingInquiry(query string) bool {
	return containsAny(lower(query), pricingKeywords)
}

// PaymentInquiry reports whether the query asks about payment plans or aid.
func PaymentInquiry(query string) bool {
	return containsAny(lower(query), paymentKeywords)
}

// Interested reports whether the conversation names a program or interest.
func Interested(query string, history []llm.Message) bool {
	return containsAny(joined(query, history), interestKeywords)
}

// EnrollmentReady reports interest combined with a readiness term.
func EnrollmentReady(query string, history []llm.Message) bool {
	text := joined(query, history)
	return containsAny(text, interestKeywords) && containsAny(text, readyKeywords)
}

// AdvisorMentioned reports whether an enrollment advisor hand-off appears in
// the history.
func AdvisorMentioned(history []llm.Message) bool {
	return containsAny(lower(conversation.Text(history)), advisorPhrases)
}

// LocationConfirmed reports whether a campus location was named anywhere in
// the history. "ny" also matches inside words such as "any".
func LocationConfirmed(history []llm.Message) bool {
	return containsAny(lower(conversation.Text(history)), locationKeywords)
}

// CompletionSignal reports whether the whole query is a closing phrase such
// as "thanks" or "that's all", after a leading topic tag like "[Nails]" and
// trailing punctuation are removed.
func CompletionSignal(query string) bool {
	_, ok := completionPhrases[normalizeClosing(query)]
	return ok
}

// normalizeClosing lowercases the query, strips a leading topic tag and
// turns punctuation other than apostrophes into spaces.
func normalizeClosing(query string) string {
	s := apostropheNorms.Replace(lower(query))
	s = topicTagRE.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) && r != '\'' {
			return ' '
		}
		return r
	}, s)
	return whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}

func lower(s string) string {
	return strings.ToLower(s)
}

func joined(query string, history []llm.Message) string {
	return lower(query + " " + conversation.Text(history))
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func isWord(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

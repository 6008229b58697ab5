package signals

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/papercomputeco/leadline/pkg/conversation"
	"github.com/papercomputeco/leadline/pkg/llm"
)

var (
	emailRE = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phoneRE = regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`)
	digitRE = regexp.MustCompile(`\d`)
)

// nameStopWords are filler words commonly typed around contact details.
var nameStopWords = map[string]struct{}{
	"my": {}, "name": {}, "is": {}, "email": {}, "mail": {}, "phone": {},
	"number": {}, "cell": {}, "and": {}, "or": {}, "the": {}, "at": {},
	"me": {}, "it": {}, "its": {}, "here": {}, "this": {}, "hi": {},
	"hello": {}, "am": {}, "call": {}, "you": {}, "can": {}, "reach": {},
	"text": {}, "mi": {}, "es": {}, "correo": {}, "nombre": {}, "soy": {},
	"telefono": {}, "teléfono": {}, "número": {}, "numero": {}, "hola": {},
}

const maxNameTokens = 2

// Contact is the contact information found in a conversation. Empty fields
// are absent.
type Contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Collected reports whether name, email and phone are all present.
func (c Contact) Collected() bool {
	return c.Name != "" && c.Email != "" && c.Phone != ""
}

// ExtractContact scans turns for the first email and phone number. The name
// is guessed from the first user turn carrying either one: the email and
// phone are removed and up to two alphabetic words are kept.
func ExtractContact(turns []llm.Message) Contact {
	text := conversation.Text(turns)

	c := Contact{
		Email: emailRE.FindString(text),
		Phone: phoneRE.FindString(text),
	}

	for i := range turns {
		if turns[i].Role != llm.RoleUser {
			continue
		}
		turnText := turns[i].GetText()
		if !emailRE.MatchString(turnText) && !phoneRE.MatchString(turnText) {
			continue
		}
		if name := guessName(turnText); name != "" {
			c.Name = name
			break
		}
	}

	return c
}

// HasEmail reports whether text contains an email address.
func HasEmail(text string) bool {
	return emailRE.MatchString(text)
}

// DigitCount returns the number of ASCII digits in text.
func DigitCount(text string) int {
	return len(digitRE.FindAllStringIndex(text, -1))
}

func guessName(text string) string {
	stripped := emailRE.ReplaceAllString(text, " ")
	stripped = phoneRE.ReplaceAllString(stripped, " ")

	tokens := make([]string, 0, maxNameTokens)
	for _, field := range strings.Fields(stripped) {
		token := strings.TrimFunc(field, func(r rune) bool { return unicode.IsPunct(r) })
		if len([]rune(token)) < 2 || !isWord(token) {
			continue
		}
		if _, stop := nameStopWords[strings.ToLower(token)]; stop {
			continue
		}
		tokens = append(tokens, token)
		if len(tokens) == maxNameTokens {
			break
		}
	}
	return strings.Join(tokens, " ")
}

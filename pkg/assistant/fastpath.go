package assistant

import (
	"strings"

	"github.com/papercomputeco/leadline/pkg/conversation"
	"github.com/papercomputeco/leadline/pkg/llm"
	"github.com/papercomputeco/leadline/pkg/signals"
)

// fastPathTurns is how many recent turns the completion short-circuit reads.
const fastPathTurns = 4

// Canned replies for the completion short-circuit.
const (
	CompletionMessage        = "Thank you! Your information is with our enrollment team and an enrollment advisor will contact you soon. Have a wonderful day!"
	CompletionMessageSpanish = "¡Gracias! Tu información ya está con nuestro equipo de inscripciones y un asesor de inscripción se comunicará contigo pronto. ¡Que tengas un excelente día!"
)

// FastComplete reports whether query closes a conversation whose recent
// turns already hold an email, a phone-length run of digits and the word
// "enrollment". It is looser than the stage classifier on the phone number
// and stricter on recency; both rule sets are kept as they are.
func FastComplete(query string, history []llm.Message) bool {
	if !signals.CompletionSignal(query) {
		return false
	}

	recent := strings.ToLower(conversation.RecentText(history, fastPathTurns))
	return signals.HasEmail(recent) &&
		signals.DigitCount(recent) >= 7 &&
		strings.Contains(recent, "enrollment")
}

// completionLanguage detects the language from user turns only; the
// assistant's hand-off text is usually English.
func completionLanguage(query string, history []llm.Message) signals.Language {
	users := make([]llm.Message, 0, len(history))
	for _, m := range history {
		if m.Role == llm.RoleUser {
			users = append(users, m)
		}
	}
	return signals.DetectLanguage(query, users)
}

// CompletionReply returns the canned closing message in lang.
func CompletionReply(lang signals.Language) string {
	if lang == signals.Spanish {
		return CompletionMessageSpanish
	}
	return CompletionMessage
}

// Package stage classifies where a lead is in the enrollment conversation.
// Classification is recomputed from the full history on every request.
package stage

import (
	"fmt"

	"github.com/papercomputeco/leadline/pkg/campus"
	"github.com/papercomputeco/leadline/pkg/llm"
	"github.com/papercomputeco/leadline/pkg/signals"
)

// Stage is a conversation stage.
type Stage string

const (
	Initial              Stage = "initial"
	Interested           Stage = "interested"
	Pricing              Stage = "pricing"
	PaymentOptions       Stage = "payment_options"
	EnrollmentCollection Stage = "enrollment_collection"
	EnrollmentReady      Stage = "enrollment_ready"
	PostEnrollment       Stage = "post_enrollment"
	Completion           Stage = "completion"
	Active               Stage = "active"
)

// Default is the stage used when classification fails.
const Default = Active

var extractContact = signals.ExtractContact

// Signals is the snapshot of detector outputs behind a classification.
type Signals struct {
	Completion        bool `json:"completion"`
	Advisor           bool `json:"advisor"`
	Pricing           bool `json:"pricing"`
	Payment           bool `json:"payment"`
	Ready             bool `json:"ready"`
	Interested        bool `json:"interested"`
	LocationConfirmed bool `json:"location_confirmed"`
}

// Result is the outcome of Classify. It always carries a usable Stage; when
// Fallback is set the stage is Default and the error explains why.
type Result struct {
	Stage    Stage            `json:"stage"`
	Fallback bool             `json:"fallback,omitempty"`
	Signals  Signals          `json:"signals"`
	Contact  signals.Contact  `json:"contact"`
	Language signals.Language `json:"language"`

	// Campuses are inferred from the current query only.
	Campuses campus.Set `json:"campuses,omitempty"`
}

// IsLate reports whether s is past the point where the lead shared interest
// in enrolling.
func IsLate(s Stage) bool {
	switch s {
	case EnrollmentCollection, EnrollmentReady, PostEnrollment, Completion:
		return true
	default:
		return false
	}
}

// Classify derives the stage for query given the prior history. The current
// query counts as the newest user turn for contact extraction. A panic in any
// detector is recovered into an error and a Default result.
func Classify(query string, history []llm.Message) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Stage: Default, Fallback: true, Language: signals.English}
			err = fmt.Errorf("classifying conversation: %v", r)
		}
	}()

	turns := make([]llm.Message, 0, len(history)+1)
	turns = append(turns, history...)
	if query != "" {
		turns = append(turns, llm.NewTextMessage(llm.RoleUser, query))
	}

	s := Signals{
		Completion:        signals.CompletionSignal(query),
		Advisor:           signals.AdvisorMentioned(history),
		Pricing:           signals.PricingInquiry(query),
		Payment:           signals.PaymentInquiry(query),
		Ready:             signals.EnrollmentReady(query, history),
		Interested:        signals.Interested(query, history),
		LocationConfirmed: signals.LocationConfirmed(turns),
	}
	contact := extractContact(turns)

	return Result{
		Stage:    decide(s, contact, len(history) == 0),
		Signals:  s,
		Contact:  contact,
		Language: signals.DetectLanguage(query, history),
		Campuses: campus.Infer(query),
	}, nil
}

// decide applies the fixed precedence; the first matching rule wins.
func decide(s Signals, c signals.Contact, newConversation bool) Stage {
	collected := c.Collected()

	switch {
	case collected && s.Completion && s.Advisor:
		return Completion
	case collected && s.Advisor:
		return PostEnrollment
	case collected:
		return EnrollmentReady
	case s.Pricing:
		return Pricing
	case s.Payment:
		return PaymentOptions
	case s.Ready:
		return EnrollmentCollection
	case s.Interested:
		return Interested
	case newConversation:
		return Initial
	default:
		return Active
	}
}

// Package draft synthesizes reply drafts from a fixed template.
package draft

import (
	"fmt"
	"strings"

	"github.com/mixelka/emailtriage/internal/classifier"
	"github.com/mixelka/emailtriage/pkg/models"
)

// Intent is a quick-reply intent
type Intent string

const (
	IntentAcknowledge Intent = "acknowledge"
	IntentPositive    Intent = "positive"
	IntentDecline     Intent = "decline"
	IntentQuestion    Intent = "question"
)

// Intents lists the quick-reply intents in display order
var Intents = []Intent{IntentAcknowledge, IntentPositive, IntentDecline, IntentQuestion}

const (
	// DefaultContext is used when the caller gives no context
	DefaultContext = "I will review your message and get back to you shortly."
	// UrgentContext replaces DefaultContext for urgent messages
	UrgentContext = "I understand this is time-sensitive and will get back to you as soon as possible."

	// NotFoundDraft is returned in place of a draft when the message is missing
	NotFoundDraft = "Email not found"
	// FallbackDraft is returned when a draft could not be composed
	FallbackDraft = "Thank you for your email. I will review and respond shortly."

	template = "Dear %s,\n\nThank you for your email regarding \"%s\".\n\n%s\n\nBest regards"
)

var cannedContexts = map[Intent]string{
	IntentAcknowledge: "I have received your message and will respond in detail soon.",
	IntentPositive:    "That sounds good to me, and I am happy to go ahead.",
	IntentDecline:     "Unfortunately I will have to decline this time, but thank you for thinking of me.",
	IntentQuestion:    "Could you share a few more details so I can give you a complete answer?",
}

// intentCodes keeps telegram callback payloads short
var intentCodes = map[Intent]string{
	IntentAcknowledge: "a",
	IntentPositive:    "p",
	IntentDecline:     "d",
	IntentQuestion:    "q",
}

// ParseIntent matches s against the known intents, ignoring case and
// surrounding space.
func ParseIntent(s string) (Intent, bool) {
	intent := Intent(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := cannedContexts[intent]; ok {
		return intent, true
	}
	return "", false
}

// Context returns the canned sentence for the intent
func (i Intent) Context() string {
	return cannedContexts[i]
}

// Code returns the one-letter code used in callback data
func (i Intent) Code() string {
	return intentCodes[i]
}

// IntentFromCode reverses Code
func IntentFromCode(code string) (Intent, bool) {
	for intent, c := range intentCodes {
		if c == code {
			return intent, true
		}
	}
	return "", false
}

// Compose expands the reply template for msg with context as the body. The
// context is used as written; an empty context yields a holding reply whose
// tone follows the message priority.
func Compose(msg models.Message, context string) string {
	return fmt.Sprintf(template, msg.From, msg.Subject, resolveContext(msg, context))
}

// ComposeIntent expands the reply template with the canned sentence of intent
func ComposeIntent(msg models.Message, intent Intent) string {
	return fmt.Sprintf(template, msg.From, msg.Subject, intent.Context())
}

func resolveContext(msg models.Message, context string) string {
	context = strings.TrimSpace(context)
	if context != "" {
		return context
	}

	priority := msg.ReplyPriority
	if priority == models.PriorityUnset {
		priority = classifier.PriorityOf(msg)
	}
	if priority == models.PriorityUrgent {
		return UrgentContext
	}
	return DefaultContext
}

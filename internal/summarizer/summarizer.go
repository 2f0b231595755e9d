// Package summarizer produces short extractive previews of message bodies.
package summarizer

import (
	"github.com/mixelka/emailtriage/pkg/models"
)

const (
	// MaxLength is the number of characters kept before truncation
	MaxLength = 100
	// Ellipsis marks a truncated summary
	Ellipsis = "..."
)

// Summarize returns the first MaxLength characters of text followed by
// Ellipsis, or text unchanged when it is short enough.
func Summarize(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxLength {
		return text
	}
	return string(runes[:MaxLength]) + Ellipsis
}

// SummaryOf summarizes the message body, or its snippet when the body is empty
func SummaryOf(msg models.Message) string {
	return Summarize(msg.Text())
}

// Unavailable is reported when there is nothing to summarize
const Unavailable = "Summary not available"

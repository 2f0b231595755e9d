// Package classifier derives reply priority, category and reply effort from
// message text. Every function is pure and safe for concurrent use.
package classifier

import (
	"strings"
	"unicode/utf8"

	"github.com/mixelka/emailtriage/pkg/models"
)

// Categories returned by CategoryOf
const (
	CategoryMeeting   = "Meeting"
	CategoryFinancial = "Financial"
	CategoryReport    = "Report"
	CategorySupport   = "Support"
	CategoryGeneral   = "General"
)

type priorityRule struct {
	Priority models.Priority
	Keywords []string
}

type categoryRule struct {
	Category string
	Keywords []string
}

type effortBucket struct {
	Below int // exclusive upper bound on body length
	Range string
}

// Checked in order, first match wins.
var priorityRules = []priorityRule{
	{Priority: models.PriorityUrgent, Keywords: []string{"urgent", "asap", "immediately", "critical", "emergency"}},
	{Priority: models.PriorityHigh, Keywords: []string{"important", "deadline", "action required", "response needed"}},
}

var seniorSenders = []string{"boss", "ceo", "manager"}

var questionMarkers = []string{"?", "question"}

var categoryRules = []categoryRule{
	{Category: CategoryMeeting, Keywords: []string{"meeting", "schedule"}},
	{Category: CategoryFinancial, Keywords: []string{"invoice", "payment"}},
	{Category: CategoryReport, Keywords: []string{"report", "review"}},
	{Category: CategorySupport, Keywords: []string{"question", "help"}},
}

var effortBuckets = []effortBucket{
	{Below: 200, Range: "2-3"},
	{Below: 500, Range: "5-7"},
	{Below: 1000, Range: "10-15"},
}

const longestEffort = "15-20"

// PriorityOf classifies how urgently a message needs a reply
func PriorityOf(msg models.Message) models.Priority {
	content := contentOf(msg)

	for _, rule := range priorityRules {
		if containsAny(content, rule.Keywords) {
			return rule.Priority
		}
	}

	if containsAny(strings.ToLower(msg.From), seniorSenders) {
		return models.PriorityHigh
	}

	if containsAny(content, questionMarkers) {
		return models.PriorityMedium
	}

	return models.PriorityLow
}

// CategoryOf assigns exactly one topical category
func CategoryOf(msg models.Message) string {
	content := contentOf(msg)

	for _, rule := range categoryRules {
		if containsAny(content, rule.Keywords) {
			return rule.Category
		}
	}
	return CategoryGeneral
}

// EffortOf estimates reply time in minutes as a range label.
// The estimate never decreases as the body grows.
func EffortOf(msg models.Message) string {
	length := utf8.RuneCountInString(msg.Body)

	for _, bucket := range effortBuckets {
		if length < bucket.Below {
			return bucket.Range
		}
	}
	return longestEffort
}

// EffortMinutes returns the lower bound of an effort range label
func EffortMinutes(label string) int {
	lower, _, _ := strings.Cut(label, "-")
	minutes := 0
	for _, r := range lower {
		if r < '0' || r > '9' {
			return 0
		}
		minutes = minutes*10 + int(r-'0')
	}
	return minutes
}

// contentOf returns the lower-cased subject and body used for keyword matching
func contentOf(msg models.Message) string {
	return strings.ToLower(msg.Subject + " " + msg.Text())
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

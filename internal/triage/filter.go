package triage

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mixelka/emailtriage/pkg/models"
)

// View selects messages by reply state or priority
type View string

const (
	ViewAll        View = ""
	ViewNeedsReply View = "needs-reply"
	ViewUrgent     View = "urgent"
	ViewHigh       View = "high"
	ViewMedium     View = "medium"
	ViewLow        View = "low"
)

// Window limits messages by age
type Window string

const (
	WindowAll   Window = ""
	WindowToday Window = "today"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
)

var windowDays = map[Window]int{
	WindowToday: 1,
	WindowWeek:  7,
	WindowMonth: 30,
}

// Filter describes a list query. The zero value lists every active
// non-draft message.
type Filter struct {
	View   View
	Drafts bool // List drafts only; View is ignored
	Search string
	Window Window
}

// ParseView parses a view name; "all" and "" both select everything
func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case "all", ViewAll:
		return ViewAll, nil
	case ViewNeedsReply, ViewUrgent, ViewHigh, ViewMedium, ViewLow:
		return v, nil
	default:
		return "", fmt.Errorf("%w: unknown view %q", ErrValidation, s)
	}
}

// ParseWindow parses a date window name
func ParseWindow(s string) (Window, error) {
	switch w := Window(strings.ToLower(strings.TrimSpace(s))); w {
	case "all", WindowAll:
		return WindowAll, nil
	case WindowToday, WindowWeek, WindowMonth:
		return w, nil
	default:
		return "", fmt.Errorf("%w: unknown date window %q", ErrValidation, s)
	}
}

// Match reports whether a derived message passes the filter at time now
func (f Filter) Match(msg models.Message, now time.Time) bool {
	if msg.IsDraft != f.Drafts {
		return false
	}
	if !f.Drafts && !f.matchView(msg) {
		return false
	}

	if search := strings.ToLower(strings.TrimSpace(f.Search)); search != "" {
		if !strings.Contains(strings.ToLower(msg.Subject), search) &&
			!strings.Contains(strings.ToLower(msg.From), search) {
			return false
		}
	}

	if limit, ok := windowDays[f.Window]; ok {
		if ageInDays(msg.ReceivedAt, now) > limit {
			return false
		}
	}
	return true
}

func (f Filter) matchView(msg models.Message) bool {
	switch f.View {
	case ViewNeedsReply:
		return msg.NeedsReply
	case ViewUrgent:
		return msg.ReplyPriority == models.PriorityUrgent
	case ViewHigh:
		return msg.ReplyPriority == models.PriorityHigh
	case ViewMedium:
		return msg.ReplyPriority == models.PriorityMedium
	case ViewLow:
		return msg.ReplyPriority == models.PriorityLow
	default:
		return true
	}
}

// ageInDays rounds the distance between t and now up to whole days
func ageInDays(t, now time.Time) int {
	diff := now.Sub(t)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(diff.Hours() / 24))
}

// sortForList orders by priority, then newest first. The sort is stable so
// equal entries keep insertion order.
func sortForList(msgs []models.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		ri, rj := msgs[i].ReplyPriority.Rank(), msgs[j].ReplyPriority.Rank()
		if ri != rj {
			return ri < rj
		}
		return msgs[i].ReceivedAt.After(msgs[j].ReceivedAt)
	})
}

package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Priority is the reply priority of a message
type Priority int

const (
	// PriorityUnset means no priority was supplied; it is derived at read time
	PriorityUnset Priority = iota
	PriorityUrgent
	PriorityHigh
	PriorityMedium
	PriorityLow
)

// Priorities lists every assignable priority, most pressing first
var Priorities = []Priority{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}

// String returns the wire name of the priority
func (p Priority) String() string {
	switch p {
	case PriorityUrgent:
		return "urgent"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return ""
	}
}

// Label returns a human readable label for list display
func (p Priority) Label() string {
	switch p {
	case PriorityUrgent:
		return "URGENT - Reply Now"
	case PriorityHigh:
		return "High Priority"
	case PriorityMedium:
		return "Medium Priority"
	case PriorityLow:
		return "Low Priority"
	default:
		return "Unknown"
	}
}

// Rank orders priorities for sorting; unset sorts last
func (p Priority) Rank() int {
	if p == PriorityUnset {
		return len(Priorities) + 1
	}
	return int(p)
}

// ParsePriority parses a wire name. An empty string yields PriorityUnset.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return PriorityUnset, nil
	case "urgent":
		return PriorityUrgent, nil
	case "high":
		return PriorityHigh, nil
	case "medium":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	default:
		return PriorityUnset, fmt.Errorf("unknown priority %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Priority) UnmarshalText(text []byte) error {
	parsed, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Value implements driver.Valuer
func (p Priority) Value() (driver.Value, error) {
	return p.String(), nil
}

// Scan implements sql.Scanner
func (p *Priority) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = PriorityUnset
		return nil
	case string:
		return p.UnmarshalText([]byte(v))
	case []byte:
		return p.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into Priority", src)
	}
}

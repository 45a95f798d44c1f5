package utils

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the layout produced by HTML date inputs.
const DateLayout = "2006-01-02"

// DisplayLayout renders due dates as "Mar 14, 2025".
const DisplayLayout = "Jan 2, 2006"

var ErrInvalidDate = errors.New("date must be YYYY-MM-DD or RFC3339")

// ParseDueDate parses a due date. An empty string means no due date and
// yields nil. Date-only values are taken as midnight UTC.
func ParseDueDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	if t, err := time.Parse(DateLayout, value); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		t = t.UTC()
		return &t, nil
	}
	return nil, ErrInvalidDate
}

// FormatDueDate renders a due date for display, or "" when absent.
func FormatDueDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(DisplayLayout)
}

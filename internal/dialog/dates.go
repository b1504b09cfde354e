package dialog

import (
	"errors"
	"strings"
	"time"
)

var ErrBadDate = errors.New("bad date format")

const (
	dateTimeLayout = "02.01.2006 15:04"
	dateLayout     = "02.01.2006"
)

// ParseDueDate accepts "dd.mm.yyyy HH:MM", falling back to
// "dd.mm.yyyy" with the time defaulted to 23:59:59.
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateTimeLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, ErrBadDate
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location()), nil
}

// ParseFilterDate accepts a bare "dd.mm.yyyy" and returns the day
// bounds used as the deadline filter range.
func ParseFilterDate(s string) (from, to time.Time, err error) {
	t, parseErr := time.Parse(dateLayout, strings.TrimSpace(s))
	if parseErr != nil {
		return time.Time{}, time.Time{}, ErrBadDate
	}
	from = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	to = time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
	return from, to, nil
}

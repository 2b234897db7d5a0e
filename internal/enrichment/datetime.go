package enrichment

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrOutOfRange is returned for well-formed dates or times with impossible components.
	ErrOutOfRange = errors.New("value out of range")
	// ErrMalformed is returned for values that are not a date or time at all.
	ErrMalformed = errors.New("malformed value")
)

var (
	dmyPattern  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	isoPattern  = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	timePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?\s*([AaPp]\.?[Mm]\.?)?$`)
)

// ParseDate converts DD/MM/YYYY (or an already ISO YYYY-MM-DD) into YYYY-MM-DD.
func ParseDate(value string) (string, error) {
	value = strings.TrimSpace(value)

	var year, month, day int
	if m := dmyPattern.FindStringSubmatch(value); m != nil {
		day, month, year = atoi(m[1]), atoi(m[2]), atoi(m[3])
	} else if m := isoPattern.FindStringSubmatch(value); m != nil {
		year, month, day = atoi(m[1]), atoi(m[2]), atoi(m[3])
	} else {
		return "", fmt.Errorf("%w: date %q", ErrMalformed, value)
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow, so a round trip exposes invalid components
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", fmt.Errorf("%w: date %q", ErrOutOfRange, value)
	}
	return t.Format("2006-01-02"), nil
}

// ParseTime converts HH:MM, H:MM, HH:MM:SS or h:MM AM/PM into HH:MM.
// The value is anchored on 1999-01-01 UTC.
func ParseTime(value string) (string, error) {
	value = strings.TrimSpace(value)

	m := timePattern.FindStringSubmatch(value)
	if m == nil {
		return "", fmt.Errorf("%w: time %q", ErrMalformed, value)
	}
	hour, minute, second := atoi(m[1]), atoi(m[2]), 0
	if m[3] != "" {
		second = atoi(m[3])
	}
	if minute > 59 || second > 59 {
		return "", fmt.Errorf("%w: time %q", ErrOutOfRange, value)
	}

	if meridiem := strings.ToUpper(strings.ReplaceAll(m[4], ".", "")); meridiem != "" {
		if hour < 1 || hour > 12 {
			return "", fmt.Errorf("%w: time %q", ErrOutOfRange, value)
		}
		hour %= 12
		if meridiem == "PM" {
			hour += 12
		}
	} else if hour > 23 {
		return "", fmt.Errorf("%w: time %q", ErrOutOfRange, value)
	}

	t := time.Date(1999, time.January, 1, hour, minute, second, 0, time.UTC)
	return t.Format("15:04"), nil
}

// atoi is only called on regexp-validated digit groups.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

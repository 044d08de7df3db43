package model

import (
	"math"
	"strings"
	"time"
)

// Sentinels returned by DaysUntilDeadline.
const (
	DeadlineDaysUnknown = 999
	DeadlineDaysPassed  = -1
)

// DaysUntilDeadline returns the whole days left until deadline, rounded up.
// Deadlines may be RFC 3339 timestamps, YYYY-MM-DD or YYYYMMDD dates; date-only
// values are read in now's location. Unparseable or missing deadlines give
// DeadlineDaysUnknown and past ones DeadlineDaysPassed.
func DaysUntilDeadline(deadline string, now time.Time) int {
	deadline = strings.TrimSpace(deadline)
	if deadline == "" || deadline == DeadlineUnknown {
		return DeadlineDaysUnknown
	}

	var (
		at  time.Time
		err error
	)
	switch {
	case strings.Contains(deadline, "T"):
		at, err = time.Parse(time.RFC3339, deadline)
		if err != nil {
			at, err = time.ParseInLocation("2006-01-02T15:04:05", deadline, now.Location())
		}
	case strings.Contains(deadline, "-"):
		at, err = time.ParseInLocation(time.DateOnly, deadline, now.Location())
	case len(deadline) == 8:
		at, err = time.ParseInLocation("20060102", deadline, now.Location())
	default:
		return DeadlineDaysUnknown
	}
	if err != nil {
		return DeadlineDaysUnknown
	}

	days := int(math.Ceil(at.Sub(now).Hours() / 24))
	if days < 0 {
		return DeadlineDaysPassed
	}
	return days
}

// BadgeVariant is the styling class of a deadline badge.
type BadgeVariant string

const (
	BadgeDanger  BadgeVariant = "danger"
	BadgeWarning BadgeVariant = "warning"
	BadgeSuccess BadgeVariant = "success"
	BadgeMuted   BadgeVariant = "muted"
)

// DeadlineBadge picks the badge style for the days left until a deadline.
func DeadlineBadge(days int) BadgeVariant {
	switch {
	case days == DeadlineDaysUnknown || days == DeadlineDaysPassed:
		return BadgeMuted
	case days <= 3:
		return BadgeDanger
	case days <= 7:
		return BadgeWarning
	default:
		return BadgeSuccess
	}
}

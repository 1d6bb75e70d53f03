// Package freshness classifies items by how close they are to expiry.
package freshness

import (
	"slices"
	"time"

	"github.com/vbonduro/wasteless/internal/domain"
)

// AtRiskDays is the largest number of days before expiry at which an item is
// still considered at risk rather than fresh.
const AtRiskDays = 3

type Status int

// Ordered by display rank: most severe first.
const (
	Expired Status = iota
	AtRisk
	Fresh
	Unknown
)

func (s Status) Label() string {
	switch s {
	case Expired:
		return "Expired"
	case AtRisk:
		return "At Risk"
	case Fresh:
		return "Fresh"
	default:
		return "Unknown"
	}
}

// Class is the CSS class used for the status badge.
func (s Status) Class() string {
	switch s {
	case Expired:
		return "status-expired"
	case AtRisk:
		return "status-risk"
	case Fresh:
		return "status-fresh"
	default:
		return "status-unknown"
	}
}

// Rank orders statuses for display; lower ranks sort first.
func (s Status) Rank() int { return int(s) }

func (s Status) String() string { return s.Label() }

// DaysUntil returns the number of calendar days from now's date to the expiry
// date, measured in now's location. ok is false when expiry cannot be parsed.
func DaysUntil(expiry string, now time.Time) (days int, ok bool) {
	exp, ok := parseDate(expiry, now.Location())
	if !ok {
		return 0, false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(exp.Sub(today).Hours() / 24), true
}

// Classify returns the status of an item expiring on expiry, as seen at now.
func Classify(expiry string, now time.Time) Status {
	days, ok := DaysUntil(expiry, now)
	switch {
	case !ok:
		return Unknown
	case days < 0:
		return Expired
	case days <= AtRiskDays:
		return AtRisk
	default:
		return Fresh
	}
}

// SortByStatus returns a copy of items ordered Expired, At Risk, Fresh,
// Unknown. Items with the same status keep their relative order.
func SortByStatus(items []domain.Item, now time.Time) []domain.Item {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b domain.Item) int {
		return Classify(a.Expiry, now).Rank() - Classify(b.Expiry, now).Rank()
	})
	return sorted
}

// Tally counts items per status.
type Tally struct {
	Fresh   int
	AtRisk  int
	Expired int
	Unknown int
}

func (t Tally) Total() int { return t.Fresh + t.AtRisk + t.Expired + t.Unknown }

// Urgent is the number of items that are at risk or already expired.
func (t Tally) Urgent() int { return t.AtRisk + t.Expired }

func Count(items []domain.Item, now time.Time) Tally {
	var t Tally
	for _, item := range items {
		switch Classify(item.Expiry, now) {
		case Fresh:
			t.Fresh++
		case AtRisk:
			t.AtRisk++
		case Expired:
			t.Expired++
		default:
			t.Unknown++
		}
	}
	return t
}

// parseDate reads a YYYY-MM-DD date, or the date part of an RFC 3339
// timestamp, as a UTC midnight so that day arithmetic is exact.
func parseDate(s string, loc *time.Location) (time.Time, bool) {
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.In(loc)
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

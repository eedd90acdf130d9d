package events

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/mholloway/tally/internal/models"
)

// seriesDates expands a recurrence into the dates of the child events: every
// occurrence after the parent's own date, up to the end date (default one
// year out).
func seriesDates(start time.Time, recurrence models.Recurrence, endDate *time.Time) ([]time.Time, error) {
	until := start.AddDate(1, 0, 0)
	if endDate != nil {
		until = *endDate
	}

	opt := rrule.ROption{Dtstart: start, Until: until}
	switch recurrence {
	case models.RecurrenceWeekly:
		opt.Freq = rrule.WEEKLY
	case models.RecurrenceBiweekly:
		opt.Freq = rrule.WEEKLY
		opt.Interval = 2
	case models.RecurrenceMonthly:
		opt.Freq = rrule.MONTHLY
	case models.RecurrenceYearly:
		opt.Freq = rrule.YEARLY
	default:
		return nil, fmt.Errorf("unknown recurrence %q", recurrence)
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("build recurrence rule: %w", err)
	}

	var dates []time.Time
	for _, occurrence := range rule.All() {
		if occurrence.Equal(start) {
			// The parent event owns the first occurrence.
			continue
		}
		dates = append(dates, occurrence)
	}
	return dates, nil
}

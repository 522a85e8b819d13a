package course

import "time"

// Generator expands a course definition into concrete intake occurrences.
// Expansion is deterministic: identical inputs yield the same multiset of
// scheduled times.
type Generator struct{}

// Expand produces one intake per (matching calendar date, time of taking)
// pair. Each wall-clock occurrence is interpreted in loc and stored in UTC.
// Occurrences strictly before now are created as missed, all others as
// scheduled. An empty TimesOfTaking yields no intakes.
func (Generator) Expand(c *Course, loc *time.Location, now time.Time) []*Intake {
	if len(c.TimesOfTaking) == 0 {
		return nil
	}
	start := dateOf(c.StartDate)
	end := dateOf(c.EndDate)

	var out []*Intake
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if !matchesFrequency(c, d) {
			continue
		}
		for _, tod := range c.TimesOfTaking {
			hour, minute, err := parseTimeOfDay(tod)
			if err != nil {
				// Times are validated before expansion.
				continue
			}
			local := time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, loc)
			instant := local.UTC()
			status := IntakeScheduled
			if instant.Before(now) {
				status = IntakeMissed
			}
			out = append(out, &Intake{
				CourseID:      c.ID,
				UserID:        c.UserID,
				ScheduledTime: instant,
				Status:        status,
			})
		}
	}
	return out
}

// matchesFrequency applies the recurrence predicate for date d. Weekly
// matches the start date's weekday; monthly matches the start date's
// day-of-month, so months lacking that day are skipped, not clamped.
func matchesFrequency(c *Course, d time.Time) bool {
	switch c.Frequency {
	case FrequencyDaily:
		return true
	case FrequencyWeekly:
		return d.Weekday() == dateOf(c.StartDate).Weekday()
	case FrequencyMonthly:
		return d.Day() == dateOf(c.StartDate).Day()
	}
	return false
}

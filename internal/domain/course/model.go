package course

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Course statuses. The sweep drives planned → active → completed; completed
// is terminal.
const (
	StatusPlanned   = "planned"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Intake frequencies, anchored to the course start date.
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// Intake statuses.
const (
	IntakeScheduled = "scheduled"
	IntakeTaken     = "taken"
	IntakeSkipped   = "skipped"
	IntakeMissed    = "missed"
)

var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrIntakeNotFound  = errors.New("intake not found")
	ErrNotOwner        = errors.New("resource belongs to another user")
	ErrAlreadyResolved = errors.New("intake already resolved with a different outcome")
)

var validFrequencies = map[string]bool{
	FrequencyDaily: true, FrequencyWeekly: true, FrequencyMonthly: true,
}

// Course maps to the courses table.
type Course struct {
	ID                uuid.UUID `db:"id" json:"id"`
	UserID            uuid.UUID `db:"user_id" json:"user_id"`
	MedicineID        uuid.UUID `db:"medicine_id" json:"medicine_id"`
	Name              string    `db:"name" json:"name"`
	Description       *string   `db:"description" json:"description,omitempty"`
	TimesADay         int       `db:"times_a_day" json:"times_a_day"`
	TimesOfTaking     []string  `db:"times_of_taking" json:"times_of_taking"`
	StartDate         time.Time `db:"start_date" json:"start_date"`
	EndDate           time.Time `db:"end_date" json:"end_date"`
	Status            string    `db:"status" json:"status"`
	Frequency         string    `db:"frequency" json:"frequency"`
	TakenDosesCount   int       `db:"taken_doses_count" json:"taken_doses_count"`
	SkippedDosesCount int       `db:"skipped_doses_count" json:"skipped_doses_count"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// Intake maps to the intakes table. ScheduledTime is stored in UTC;
// ActualTime is set exactly when status is taken. The owner user id is
// denormalized for authorization checks.
type Intake struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	CourseID      uuid.UUID  `db:"course_id" json:"course_id"`
	UserID        uuid.UUID  `db:"user_id" json:"user_id"`
	ScheduledTime time.Time  `db:"scheduled_time" json:"scheduled_time"`
	ActualTime    *time.Time `db:"actual_time" json:"actual_time,omitempty"`
	Status        string     `db:"status" json:"status"`
	SkipReason    *string    `db:"skip_reason" json:"skip_reason,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// Validate checks the course definition. Dates are compared at day
// granularity; times of taking must be HH:MM wall-clock entries and their
// count must equal TimesADay.
func (c *Course) Validate() error {
	if c.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if c.MedicineID == uuid.Nil {
		return fmt.Errorf("medicine_id is required")
	}
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.TimesADay < 0 {
		return fmt.Errorf("times_a_day must not be negative")
	}
	if len(c.TimesOfTaking) != c.TimesADay {
		return fmt.Errorf("times_of_taking must have exactly %d entries, got %d", c.TimesADay, len(c.TimesOfTaking))
	}
	for _, tod := range c.TimesOfTaking {
		if _, _, err := parseTimeOfDay(tod); err != nil {
			return fmt.Errorf("invalid time of taking %q: %w", tod, err)
		}
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return fmt.Errorf("start_date and end_date are required")
	}
	if dateOf(c.StartDate).After(dateOf(c.EndDate)) {
		return fmt.Errorf("start_date must not be after end_date")
	}
	if !validFrequencies[c.Frequency] {
		return fmt.Errorf("invalid frequency: %s", c.Frequency)
	}
	return nil
}

// ScheduleChanged reports whether any schedule-affecting field differs
// between the stored course and the update. A change forces regeneration of
// the course's intakes.
func (c *Course) ScheduleChanged(updated *Course) bool {
	if !dateOf(c.StartDate).Equal(dateOf(updated.StartDate)) ||
		!dateOf(c.EndDate).Equal(dateOf(updated.EndDate)) {
		return true
	}
	if c.TimesADay != updated.TimesADay || c.Frequency != updated.Frequency {
		return true
	}
	if c.MedicineID != updated.MedicineID {
		return true
	}
	if len(c.TimesOfTaking) != len(updated.TimesOfTaking) {
		return true
	}
	for i := range c.TimesOfTaking {
		if c.TimesOfTaking[i] != updated.TimesOfTaking[i] {
			return true
		}
	}
	return false
}

func parseTimeOfDay(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}

// dateOf truncates an instant to its calendar date, dropping zone and
// time-of-day.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

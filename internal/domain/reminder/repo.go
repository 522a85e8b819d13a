package reminder

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DueIntake is one scheduled intake inside the reminder window, joined with
// the course and medicine names needed to compose the message.
type DueIntake struct {
	IntakeID      uuid.UUID `db:"intake_id"`
	UserID        uuid.UUID `db:"user_id"`
	ScheduledTime time.Time `db:"scheduled_time"`
	MedicineName  string    `db:"medicine_name"`
	CourseName    string    `db:"course_name"`
}

// DueLister returns scheduled intakes with scheduled_time in [from, to].
type DueLister interface {
	ListDue(ctx context.Context, from, to time.Time) ([]*DueIntake, error)
}

package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry maps to the audit_log table. One entry records a single user-visible
// action together with optional back-references to the entities it touched.
type Entry struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Description string     `db:"description" json:"description"`
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	MedicineID  *uuid.UUID `db:"medicine_id" json:"medicine_id,omitempty"`
	CourseID    *uuid.UUID `db:"course_id" json:"course_id,omitempty"`
	IntakeID    *uuid.UUID `db:"intake_id" json:"intake_id,omitempty"`
	RecordedAt  time.Time  `db:"recorded_at" json:"recorded_at"`
}

// Ref carries the optional entity back-references for a new entry.
type Ref struct {
	MedicineID *uuid.UUID
	CourseID   *uuid.UUID
	IntakeID   *uuid.UUID
}

package course

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medtrack/medtrack/internal/domain/audit"
	"github.com/medtrack/medtrack/internal/platform/db"
)

// UserLocator resolves a user's time zone for schedule expansion.
type UserLocator interface {
	LocationByID(ctx context.Context, id uuid.UUID) (*time.Location, error)
}

// MedicineChecker verifies that a referenced medicine exists and belongs to
// the user.
type MedicineChecker interface {
	Exists(ctx context.Context, id, userID uuid.UUID) (bool, error)
}

// AuditRecorder is the audit collaborator. Record is fire-and-forget; the
// detach operations run inside the caller's transaction.
type AuditRecorder interface {
	Record(ctx context.Context, description string, userID uuid.UUID, ref audit.Ref)
	DetachIntakes(ctx context.Context, courseID uuid.UUID) error
	DetachCourse(ctx context.Context, courseID uuid.UUID) error
}

type Service struct {
	courses   CourseRepository
	intakes   IntakeRepository
	medicines MedicineChecker
	users     UserLocator
	audit     AuditRecorder
	tx        db.TxRunner
	gen       Generator
	clock     func() time.Time
}

func NewService(courses CourseRepository, intakes IntakeRepository,
	medicines MedicineChecker, users UserLocator, rec AuditRecorder, tx db.TxRunner) *Service {
	return &Service{
		courses:   courses,
		intakes:   intakes,
		medicines: medicines,
		users:     users,
		audit:     rec,
		tx:        tx,
		clock:     time.Now,
	}
}

// CreateCourse validates and persists a new planned course, then expands its
// schedule into intakes in the same transaction.
func (s *Service) CreateCourse(ctx context.Context, c *Course) error {
	c.Status = StatusPlanned
	c.TakenDosesCount = 0
	c.SkippedDosesCount = 0
	if err := c.Validate(); err != nil {
		return err
	}
	ok, err := s.medicines.Exists(ctx, c.MedicineID, c.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("medicine %s not found for user", c.MedicineID)
	}

	loc := s.locationFor(ctx, c.UserID)
	now := s.clock()

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.courses.Create(ctx, c); err != nil {
			return err
		}
		return s.intakes.CreateBulk(ctx, s.gen.Expand(c, loc, now))
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, fmt.Sprintf("course %q created", c.Name), c.UserID,
		audit.Ref{MedicineID: &c.MedicineID, CourseID: &c.ID})
	return nil
}

// UpdateCourse replaces the course definition. When a schedule-affecting
// field changed (dates, times, frequency, medicine) every existing intake of
// the course is deleted and the schedule is regenerated, discarding prior
// taken/skipped history and resetting both dose counters. Callers must treat
// such updates as destructive. Updating with an unchanged definition leaves
// the intake set equivalent.
func (s *Service) UpdateCourse(ctx context.Context, c *Course, actorID uuid.UUID) error {
	existing, err := s.courses.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	if existing.UserID != actorID {
		return ErrNotOwner
	}
	c.UserID = existing.UserID
	if c.Status == "" {
		c.Status = existing.Status
	}
	if c.Status != StatusPlanned && c.Status != StatusActive && c.Status != StatusCompleted {
		return fmt.Errorf("invalid status: %s", c.Status)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if c.MedicineID != existing.MedicineID {
		ok, err := s.medicines.Exists(ctx, c.MedicineID, c.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("medicine %s not found for user", c.MedicineID)
		}
	}

	regenerate := existing.ScheduleChanged(c)
	loc := s.locationFor(ctx, c.UserID)
	now := s.clock()

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if regenerate {
			c.TakenDosesCount = 0
			c.SkippedDosesCount = 0
		} else {
			// Re-read inside the transaction so a concurrent take/skip
			// increment is not overwritten with a stale snapshot.
			fresh, err := s.courses.GetByID(ctx, c.ID)
			if err != nil {
				return err
			}
			c.TakenDosesCount = fresh.TakenDosesCount
			c.SkippedDosesCount = fresh.SkippedDosesCount
		}
		if err := s.courses.Update(ctx, c); err != nil {
			return err
		}
		if !regenerate {
			return nil
		}
		if err := s.audit.DetachIntakes(ctx, c.ID); err != nil {
			return err
		}
		if err := s.intakes.DeleteByCourse(ctx, c.ID); err != nil {
			return err
		}
		return s.intakes.CreateBulk(ctx, s.gen.Expand(c, loc, now))
	})
	if err != nil {
		return err
	}

	desc := fmt.Sprintf("course %q updated", c.Name)
	if regenerate {
		desc = fmt.Sprintf("course %q updated, schedule regenerated", c.Name)
	}
	s.audit.Record(ctx, desc, c.UserID, audit.Ref{MedicineID: &c.MedicineID, CourseID: &c.ID})
	return nil
}

// DeleteCourse removes the course and all of its intakes, clearing audit
// back-references first.
func (s *Service) DeleteCourse(ctx context.Context, id, actorID uuid.UUID) error {
	existing, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.UserID != actorID {
		return ErrNotOwner
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.audit.DetachCourse(ctx, id); err != nil {
			return err
		}
		if err := s.intakes.DeleteByCourse(ctx, id); err != nil {
			return err
		}
		return s.courses.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, fmt.Sprintf("course %q deleted", existing.Name), actorID,
		audit.Ref{MedicineID: &existing.MedicineID})
	return nil
}

func (s *Service) GetCourse(ctx context.Context, id, actorID uuid.UUID) (*Course, error) {
	c, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != actorID {
		return nil, ErrNotOwner
	}
	return c, nil
}

func (s *Service) ListCourses(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Course, int, error) {
	return s.courses.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) ListActiveCourses(ctx context.Context, userID uuid.UUID) ([]*Course, error) {
	return s.courses.ListActiveByUser(ctx, userID)
}

func (s *Service) ListIntakes(ctx context.Context, courseID, actorID uuid.UUID) ([]*Intake, error) {
	if _, err := s.GetCourse(ctx, courseID, actorID); err != nil {
		return nil, err
	}
	return s.intakes.ListByCourse(ctx, courseID)
}

func (s *Service) ListIntakesInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*Intake, error) {
	return s.intakes.ListByUserInRange(ctx, userID, from, to)
}

// MarkTaken transitions an intake to taken and increments the owning
// course's taken counter by exactly one, atomically. Repeating the call on
// an already-taken intake is a no-op returning the current state; an intake
// already skipped is rejected with ErrAlreadyResolved.
func (s *Service) MarkTaken(ctx context.Context, intakeID, actorID uuid.UUID, now time.Time) (*Intake, error) {
	var out *Intake
	var transitioned bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		in, err := s.intakes.GetByID(ctx, intakeID)
		if err != nil {
			return err
		}
		if in.UserID != actorID {
			return ErrNotOwner
		}
		switch in.Status {
		case IntakeTaken:
			out = in
			return nil
		case IntakeSkipped:
			return ErrAlreadyResolved
		}
		t := now.UTC()
		in.Status = IntakeTaken
		in.ActualTime = &t
		if err := s.intakes.Update(ctx, in); err != nil {
			return err
		}
		if err := s.courses.IncrementTaken(ctx, in.CourseID); err != nil {
			return err
		}
		out = in
		transitioned = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if transitioned {
		s.audit.Record(ctx, "intake marked taken", actorID,
			audit.Ref{CourseID: &out.CourseID, IntakeID: &out.ID})
	}
	return out, nil
}

// MarkSkipped transitions an intake to skipped with a reason and increments
// the owning course's skipped counter by exactly one, atomically. The same
// repeat-call contract as MarkTaken applies.
func (s *Service) MarkSkipped(ctx context.Context, intakeID, actorID uuid.UUID, reason string, now time.Time) (*Intake, error) {
	var out *Intake
	var transitioned bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		in, err := s.intakes.GetByID(ctx, intakeID)
		if err != nil {
			return err
		}
		if in.UserID != actorID {
			return ErrNotOwner
		}
		switch in.Status {
		case IntakeSkipped:
			out = in
			return nil
		case IntakeTaken:
			return ErrAlreadyResolved
		}
		in.Status = IntakeSkipped
		in.SkipReason = &reason
		if err := s.intakes.Update(ctx, in); err != nil {
			return err
		}
		if err := s.courses.IncrementSkipped(ctx, in.CourseID); err != nil {
			return err
		}
		out = in
		transitioned = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if transitioned {
		s.audit.Record(ctx, "intake marked skipped", actorID,
			audit.Ref{CourseID: &out.CourseID, IntakeID: &out.ID})
	}
	return out, nil
}

// locationFor resolves the owner's zone; unresolvable users fall back to
// UTC rather than failing the operation.
func (s *Service) locationFor(ctx context.Context, userID uuid.UUID) *time.Location {
	loc, err := s.users.LocationByID(ctx, userID)
	if err != nil || loc == nil {
		return time.UTC
	}
	return loc
}

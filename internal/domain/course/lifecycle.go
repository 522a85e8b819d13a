package course

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/medtrack/medtrack/internal/domain/audit"
	"github.com/medtrack/medtrack/internal/platform/db"
)

// StatusSweeper advances course status by calendar date: planned courses
// whose start date has arrived become active, active courses past their end
// date become completed. Completed is terminal. Each transition commits
// independently; a failure on one course is logged and the sweep continues.
type StatusSweeper struct {
	courses CourseRepository
	audit   AuditRecorder
	tx      db.TxRunner
	logger  zerolog.Logger
	clock   func() time.Time
}

func NewStatusSweeper(courses CourseRepository, rec AuditRecorder, tx db.TxRunner, logger zerolog.Logger) *StatusSweeper {
	return &StatusSweeper{
		courses: courses,
		audit:   rec,
		tx:      tx,
		logger:  logger,
		clock:   time.Now,
	}
}

func (s *StatusSweeper) Name() string { return "course-status-sweep" }

func (s *StatusSweeper) Run(ctx context.Context) error {
	today := dateOf(s.clock().UTC())

	planned, err := s.courses.ListByStatus(ctx, StatusPlanned)
	if err != nil {
		return fmt.Errorf("list planned courses: %w", err)
	}
	for _, c := range planned {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if dateOf(c.StartDate).After(today) {
			continue
		}
		s.transition(ctx, c, StatusActive)
	}

	active, err := s.courses.ListByStatus(ctx, StatusActive)
	if err != nil {
		return fmt.Errorf("list active courses: %w", err)
	}
	for _, c := range active {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !dateOf(c.EndDate).Before(today) {
			continue
		}
		s.transition(ctx, c, StatusCompleted)
	}
	return nil
}

func (s *StatusSweeper) transition(ctx context.Context, c *Course, status string) {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.courses.UpdateStatus(ctx, c.ID, status)
	})
	if err != nil {
		s.logger.Error().Err(err).
			Str("course_id", c.ID.String()).
			Str("to_status", status).
			Msg("course status transition failed")
		return
	}
	s.audit.Record(ctx, fmt.Sprintf("course %q became %s", c.Name, status), c.UserID,
		audit.Ref{MedicineID: &c.MedicineID, CourseID: &c.ID})
	s.logger.Info().
		Str("course_id", c.ID.String()).
		Str("from_status", c.Status).
		Str("to_status", status).
		Msg("course status advanced")
}

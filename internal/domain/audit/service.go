package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Recorder writes audit entries. Recording is fire-and-forget: a failed
// write is logged and never propagated to the triggering operation.
type Recorder struct {
	repo   Repository
	logger zerolog.Logger
}

func NewRecorder(repo Repository, logger zerolog.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

func (r *Recorder) Record(ctx context.Context, description string, userID uuid.UUID, ref Ref) {
	e := &Entry{
		Description: description,
		UserID:      userID,
		MedicineID:  ref.MedicineID,
		CourseID:    ref.CourseID,
		IntakeID:    ref.IntakeID,
	}
	if err := r.repo.Create(ctx, e); err != nil {
		r.logger.Error().Err(err).
			Str("description", description).
			Str("user_id", userID.String()).
			Msg("audit record failed")
	}
}

// DetachIntakes clears intake back-references for a course prior to bulk
// intake deletion.
func (r *Recorder) DetachIntakes(ctx context.Context, courseID uuid.UUID) error {
	return r.repo.DetachIntakes(ctx, courseID)
}

// DetachCourse clears course and intake back-references prior to course
// deletion.
func (r *Recorder) DetachCourse(ctx context.Context, courseID uuid.UUID) error {
	return r.repo.DetachCourse(ctx, courseID)
}

func (r *Recorder) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	return r.repo.ListByUser(ctx, userID, limit, offset)
}

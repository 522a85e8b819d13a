package audit

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, e *Entry) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, int, error)
	// DetachIntakes clears intake back-references for every entry under the
	// given course so the intakes can be bulk-deleted.
	DetachIntakes(ctx context.Context, courseID uuid.UUID) error
	// DetachCourse clears course and intake back-references for every entry
	// under the given course.
	DetachCourse(ctx context.Context, courseID uuid.UUID) error
}

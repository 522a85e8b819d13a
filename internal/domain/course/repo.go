package course

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type CourseRepository interface {
	Create(ctx context.Context, c *Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*Course, error)
	Update(ctx context.Context, c *Course) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Course, int, error)
	ListByStatus(ctx context.Context, status string) ([]*Course, error)
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*Course, error)
	// IncrementTaken and IncrementSkipped bump the dose counters by one.
	// Callers run them in the same transaction as the intake update.
	IncrementTaken(ctx context.Context, id uuid.UUID) error
	IncrementSkipped(ctx context.Context, id uuid.UUID) error
}

type IntakeRepository interface {
	CreateBulk(ctx context.Context, intakes []*Intake) error
	GetByID(ctx context.Context, id uuid.UUID) (*Intake, error)
	Update(ctx context.Context, in *Intake) error
	DeleteByCourse(ctx context.Context, courseID uuid.UUID) error
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*Intake, error)
	ListByUserInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*Intake, error)
	ListScheduledInRange(ctx context.Context, from, to time.Time) ([]*Intake, error)
}

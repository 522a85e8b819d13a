package course

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medtrack/medtrack/internal/platform/db"
)

func newTestSweeper(courses CourseRepository, rec AuditRecorder, now time.Time) *StatusSweeper {
	s := NewStatusSweeper(courses, rec, db.NopTxRunner{}, zerolog.Nop())
	s.clock = func() time.Time { return now }
	return s
}

func storeCourse(repo *mockCourseRepo, status string, start, end time.Time) *Course {
	c := &Course{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		MedicineID: uuid.New(),
		Name:       "sweep target",
		StartDate:  start,
		EndDate:    end,
		Status:     status,
		Frequency:  FrequencyDaily,
	}
	repo.store[c.ID] = c
	return c
}

func TestSweep_ActivatesPlannedAtStartDate(t *testing.T) {
	repo := newMockCourseRepo()
	today := date(2025, 6, 15)
	due := storeCourse(repo, StatusPlanned, today, date(2025, 6, 30))
	future := storeCourse(repo, StatusPlanned, date(2025, 6, 16), date(2025, 6, 30))

	sweeper := newTestSweeper(repo, &mockAudit{}, today)
	if err := sweeper.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, _ := repo.GetByID(context.Background(), due.ID); got.Status != StatusActive {
		t.Errorf("course at start date: expected active, got %s", got.Status)
	}
	if got, _ := repo.GetByID(context.Background(), future.ID); got.Status != StatusPlanned {
		t.Errorf("future course: expected planned, got %s", got.Status)
	}
}

func TestSweep_CompletesActivePastEndDate(t *testing.T) {
	repo := newMockCourseRepo()
	today := date(2025, 6, 15)
	ended := storeCourse(repo, StatusActive, date(2025, 6, 1), date(2025, 6, 14))
	running := storeCourse(repo, StatusActive, date(2025, 6, 1), today)

	sweeper := newTestSweeper(repo, &mockAudit{}, today)
	if err := sweeper.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, _ := repo.GetByID(context.Background(), ended.ID); got.Status != StatusCompleted {
		t.Errorf("ended course: expected completed, got %s", got.Status)
	}
	// End date is inclusive; a course ending today stays active.
	if got, _ := repo.GetByID(context.Background(), running.ID); got.Status != StatusActive {
		t.Errorf("running course: expected active, got %s", got.Status)
	}
}

func TestSweep_Monotone(t *testing.T) {
	repo := newMockCourseRepo()
	today := date(2025, 6, 15)
	completed := storeCourse(repo, StatusCompleted, date(2025, 5, 1), date(2025, 5, 31))

	sweeper := newTestSweeper(repo, &mockAudit{}, today)
	for i := 0; i < 3; i++ {
		if err := sweeper.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got, _ := repo.GetByID(context.Background(), completed.ID); got.Status != StatusCompleted {
		t.Errorf("completed course must stay completed, got %s", got.Status)
	}
}

func TestSweep_PlannedPastEndActivatesThenCompletes(t *testing.T) {
	repo := newMockCourseRepo()
	today := date(2025, 6, 15)
	stale := storeCourse(repo, StatusPlanned, date(2025, 5, 1), date(2025, 5, 31))

	sweeper := newTestSweeper(repo, &mockAudit{}, today)
	// The active phase runs after the planned phase, so a stale planned
	// course passes through active and completes within one sweep.
	if err := sweeper.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, _ := repo.GetByID(context.Background(), stale.ID); got.Status != StatusCompleted {
		t.Errorf("expected completed, got %s", got.Status)
	}
}

func TestSweep_AuditsTransitions(t *testing.T) {
	repo := newMockCourseRepo()
	today := date(2025, 6, 15)
	storeCourse(repo, StatusPlanned, today, date(2025, 6, 30))
	rec := &mockAudit{}

	sweeper := newTestSweeper(repo, rec, today)
	if err := sweeper.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.records) != 1 {
		t.Errorf("expected 1 audit record, got %d", len(rec.records))
	}
}

func TestSweep_StopsOnCancellation(t *testing.T) {
	repo := newMockCourseRepo()
	today := date(2025, 6, 15)
	storeCourse(repo, StatusPlanned, today, date(2025, 6, 30))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sweeper := newTestSweeper(repo, &mockAudit{}, today)
	if err := sweeper.Run(ctx); err == nil {
		t.Error("expected context error")
	}
}

package audit

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockRepo struct {
	entries    []*Entry
	failCreate bool
	detached   []uuid.UUID
}

func (m *mockRepo) Create(_ context.Context, e *Entry) error {
	if m.failCreate {
		return fmt.Errorf("insert failed")
	}
	e.ID = uuid.New()
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	var r []*Entry
	for _, e := range m.entries {
		if e.UserID == userID {
			r = append(r, e)
		}
	}
	return r, len(r), nil
}

func (m *mockRepo) DetachIntakes(_ context.Context, courseID uuid.UUID) error {
	m.detached = append(m.detached, courseID)
	for _, e := range m.entries {
		if e.CourseID != nil && *e.CourseID == courseID {
			e.IntakeID = nil
		}
	}
	return nil
}

func (m *mockRepo) DetachCourse(_ context.Context, courseID uuid.UUID) error {
	for _, e := range m.entries {
		if e.CourseID != nil && *e.CourseID == courseID {
			e.CourseID = nil
			e.IntakeID = nil
		}
	}
	return nil
}

func TestRecord_PersistsEntry(t *testing.T) {
	repo := &mockRepo{}
	rec := NewRecorder(repo, zerolog.Nop())

	userID := uuid.New()
	courseID := uuid.New()
	rec.Record(context.Background(), "course created", userID, Ref{CourseID: &courseID})

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	e := repo.entries[0]
	if e.Description != "course created" {
		t.Errorf("unexpected description %q", e.Description)
	}
	if e.CourseID == nil || *e.CourseID != courseID {
		t.Error("expected course back-reference to be set")
	}
}

func TestRecord_FailureDoesNotPanic(t *testing.T) {
	repo := &mockRepo{failCreate: true}
	rec := NewRecorder(repo, zerolog.Nop())

	// Must swallow the repository error.
	rec.Record(context.Background(), "intake taken", uuid.New(), Ref{})

	if len(repo.entries) != 0 {
		t.Errorf("expected no entries, got %d", len(repo.entries))
	}
}

func TestDetachIntakes_ClearsBackReferences(t *testing.T) {
	repo := &mockRepo{}
	rec := NewRecorder(repo, zerolog.Nop())

	userID := uuid.New()
	courseID := uuid.New()
	intakeID := uuid.New()
	rec.Record(context.Background(), "intake taken", userID, Ref{CourseID: &courseID, IntakeID: &intakeID})

	if err := rec.DetachIntakes(context.Background(), courseID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.entries[0].IntakeID != nil {
		t.Error("expected intake back-reference to be cleared")
	}
	if repo.entries[0].CourseID == nil {
		t.Error("expected course back-reference to remain")
	}
}

func TestDetachCourse_ClearsBackReferences(t *testing.T) {
	repo := &mockRepo{}
	rec := NewRecorder(repo, zerolog.Nop())

	userID := uuid.New()
	courseID := uuid.New()
	intakeID := uuid.New()
	rec.Record(context.Background(), "intake skipped", userID, Ref{CourseID: &courseID, IntakeID: &intakeID})

	if err := rec.DetachCourse(context.Background(), courseID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.entries[0].CourseID != nil || repo.entries[0].IntakeID != nil {
		t.Error("expected course and intake back-references to be cleared")
	}
}

func TestListByUser_FiltersByUser(t *testing.T) {
	repo := &mockRepo{}
	rec := NewRecorder(repo, zerolog.Nop())

	alice := uuid.New()
	bob := uuid.New()
	rec.Record(context.Background(), "a1", alice, Ref{})
	rec.Record(context.Background(), "b1", bob, Ref{})
	rec.Record(context.Background(), "a2", alice, Ref{})

	items, total, err := rec.ListByUser(context.Background(), alice, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("expected 2 entries for alice, got %d (total %d)", len(items), total)
	}
}

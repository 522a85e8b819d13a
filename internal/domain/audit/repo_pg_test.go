package audit

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medtrack/medtrack/internal/platform/db"
)

// txContext begins a mock transaction and stores it in the context so the
// repository routes its queries through the mock.
func txContext(t *testing.T, mock pgxmock.PgxPoolIface) context.Context {
	t.Helper()
	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)
	return db.ContextWithTx(context.Background(), tx)
}

func TestRepoCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepoPG(nil)
	ctx := txContext(t, mock)

	userID := uuid.New()
	courseID := uuid.New()
	recordedAt := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO audit_log (id, description, user_id, medicine_id, course_id, intake_id)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING recorded_at`)).
		WithArgs(pgxmock.AnyArg(), "course created", userID, pgxmock.AnyArg(), &courseID, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"recorded_at"}).AddRow(recordedAt))

	e := &Entry{Description: "course created", UserID: userID, CourseID: &courseID}
	err = repo.Create(ctx, e)
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, recordedAt, e.RecordedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoDetachIntakes(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepoPG(nil)
	ctx := txContext(t, mock)

	courseID := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE audit_log SET intake_id = NULL WHERE course_id = $1`)).
		WithArgs(courseID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	assert.NoError(t, repo.DetachIntakes(ctx, courseID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoDetachCourse(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepoPG(nil)
	ctx := txContext(t, mock)

	courseID := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE audit_log SET course_id = NULL, intake_id = NULL WHERE course_id = $1`)).
		WithArgs(courseID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	assert.NoError(t, repo.DetachCourse(ctx, courseID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

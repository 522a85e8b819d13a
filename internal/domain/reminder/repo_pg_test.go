package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medtrack/medtrack/internal/platform/db"
)

func txContext(t *testing.T, mock pgxmock.PgxPoolIface) context.Context {
	t.Helper()
	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)
	return db.ContextWithTx(context.Background(), tx)
}

func TestDueLister_ListDue(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	lister := NewDueListerPG(nil)
	ctx := txContext(t, mock)

	from := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	to := from.Add(10 * time.Minute)
	intakeID := uuid.New()
	userID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM intakes i`).
		WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "scheduled_time", "name", "name"}).
			AddRow(intakeID, userID, from.Add(5*time.Minute), "Aspirin", "Morning course"))

	items, err := lister.ListDue(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, intakeID, items[0].IntakeID)
	assert.Equal(t, "Aspirin", items[0].MedicineName)
	assert.Equal(t, "Morning course", items[0].CourseName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDueLister_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	lister := NewDueListerPG(nil)
	ctx := txContext(t, mock)

	from := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	to := from.Add(10 * time.Minute)

	mock.ExpectQuery(`SELECT .+ FROM intakes i`).
		WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "scheduled_time", "name", "name"}))

	items, err := lister.ListDue(ctx, from, to)
	require.NoError(t, err)
	assert.Empty(t, items)
}

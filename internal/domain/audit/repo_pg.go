package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medtrack/medtrack/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const entryCols = `id, description, user_id, medicine_id, course_id, intake_id, recorded_at`

func (r *repoPG) Create(ctx context.Context, e *Entry) error {
	e.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO audit_log (id, description, user_id, medicine_id, course_id, intake_id)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING recorded_at`,
		e.ID, e.Description, e.UserID, e.MedicineID, e.CourseID, e.IntakeID).
		Scan(&e.RecordedAt)
}

func (r *repoPG) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM audit_log WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+entryCols+` FROM audit_log WHERE user_id = $1 ORDER BY recorded_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Description, &e.UserID, &e.MedicineID,
			&e.CourseID, &e.IntakeID, &e.RecordedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &e)
	}
	return items, total, nil
}

func (r *repoPG) DetachIntakes(ctx context.Context, courseID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE audit_log SET intake_id = NULL WHERE course_id = $1`, courseID)
	return err
}

func (r *repoPG) DetachCourse(ctx context.Context, courseID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE audit_log SET course_id = NULL, intake_id = NULL WHERE course_id = $1`, courseID)
	return err
}

package reminder

import (
	"context"
	"time"

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

type dueListerPG struct{ pool *pgxpool.Pool }

func NewDueListerPG(pool *pgxpool.Pool) DueLister {
	return &dueListerPG{pool: pool}
}

func (r *dueListerPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *dueListerPG) ListDue(ctx context.Context, from, to time.Time) ([]*DueIntake, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT i.id, i.user_id, i.scheduled_time, m.name, c.name
		FROM intakes i
		JOIN courses c ON c.id = i.course_id
		JOIN medicines m ON m.id = c.medicine_id
		WHERE i.status = 'scheduled' AND i.scheduled_time >= $1 AND i.scheduled_time <= $2
		ORDER BY i.scheduled_time`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*DueIntake
	for rows.Next() {
		var d DueIntake
		if err := rows.Scan(&d.IntakeID, &d.UserID, &d.ScheduledTime, &d.MedicineName, &d.CourseName); err != nil {
			return nil, err
		}
		items = append(items, &d)
	}
	return items, rows.Err()
}

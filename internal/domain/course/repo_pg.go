package course

import (
	"context"
	"errors"
	"time"

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

// =========== Course Repository ===========

type courseRepoPG struct{ pool *pgxpool.Pool }

func NewCourseRepoPG(pool *pgxpool.Pool) CourseRepository {
	return &courseRepoPG{pool: pool}
}

func (r *courseRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const courseCols = `id, user_id, medicine_id, name, description, times_a_day,
	times_of_taking, start_date, end_date, status, frequency,
	taken_doses_count, skipped_doses_count, created_at, updated_at`

func (r *courseRepoPG) scan(row pgx.Row) (*Course, error) {
	var c Course
	err := row.Scan(&c.ID, &c.UserID, &c.MedicineID, &c.Name, &c.Description,
		&c.TimesADay, &c.TimesOfTaking, &c.StartDate, &c.EndDate,
		&c.Status, &c.Frequency, &c.TakenDosesCount, &c.SkippedDosesCount,
		&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCourseNotFound
	}
	return &c, err
}

func (r *courseRepoPG) Create(ctx context.Context, c *Course) error {
	c.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO courses (id, user_id, medicine_id, name, description, times_a_day,
			times_of_taking, start_date, end_date, status, frequency)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		c.ID, c.UserID, c.MedicineID, c.Name, c.Description, c.TimesADay,
		c.TimesOfTaking, c.StartDate, c.EndDate, c.Status, c.Frequency)
	return err
}

func (r *courseRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Course, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+courseCols+` FROM courses WHERE id = $1`, id))
}

func (r *courseRepoPG) Update(ctx context.Context, c *Course) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE courses SET medicine_id=$2, name=$3, description=$4, times_a_day=$5,
			times_of_taking=$6, start_date=$7, end_date=$8, status=$9, frequency=$10,
			taken_doses_count=$11, skipped_doses_count=$12, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.MedicineID, c.Name, c.Description, c.TimesADay,
		c.TimesOfTaking, c.StartDate, c.EndDate, c.Status, c.Frequency,
		c.TakenDosesCount, c.SkippedDosesCount)
	return err
}

func (r *courseRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE courses SET status=$2, updated_at=NOW() WHERE id = $1`, id, status)
	return err
}

func (r *courseRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	return err
}

func (r *courseRepoPG) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Course, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM courses WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+courseCols+` FROM courses WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Course
	for rows.Next() {
		c, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, nil
}

func (r *courseRepoPG) ListByStatus(ctx context.Context, status string) ([]*Course, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+courseCols+` FROM courses WHERE status = $1 ORDER BY created_at`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Course
	for rows.Next() {
		c, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, nil
}

func (r *courseRepoPG) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*Course, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+courseCols+` FROM courses WHERE user_id = $1 AND status = $2 ORDER BY created_at`, userID, StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Course
	for rows.Next() {
		c, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, nil
}

func (r *courseRepoPG) IncrementTaken(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE courses SET taken_doses_count = taken_doses_count + 1, updated_at=NOW() WHERE id = $1`, id)
	return err
}

func (r *courseRepoPG) IncrementSkipped(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE courses SET skipped_doses_count = skipped_doses_count + 1, updated_at=NOW() WHERE id = $1`, id)
	return err
}

// =========== Intake Repository ===========

type intakeRepoPG struct{ pool *pgxpool.Pool }

func NewIntakeRepoPG(pool *pgxpool.Pool) IntakeRepository {
	return &intakeRepoPG{pool: pool}
}

func (r *intakeRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const intakeCols = `id, course_id, user_id, scheduled_time, actual_time, status, skip_reason, created_at`

func (r *intakeRepoPG) scan(row pgx.Row) (*Intake, error) {
	var in Intake
	err := row.Scan(&in.ID, &in.CourseID, &in.UserID, &in.ScheduledTime,
		&in.ActualTime, &in.Status, &in.SkipReason, &in.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrIntakeNotFound
	}
	return &in, err
}

func (r *intakeRepoPG) CreateBulk(ctx context.Context, intakes []*Intake) error {
	for _, in := range intakes {
		in.ID = uuid.New()
		if _, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO intakes (id, course_id, user_id, scheduled_time, status)
			VALUES ($1,$2,$3,$4,$5)`,
			in.ID, in.CourseID, in.UserID, in.ScheduledTime, in.Status); err != nil {
			return err
		}
	}
	return nil
}

func (r *intakeRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Intake, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+intakeCols+` FROM intakes WHERE id = $1`, id))
}

func (r *intakeRepoPG) Update(ctx context.Context, in *Intake) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE intakes SET actual_time=$2, status=$3, skip_reason=$4
		WHERE id = $1`,
		in.ID, in.ActualTime, in.Status, in.SkipReason)
	return err
}

func (r *intakeRepoPG) DeleteByCourse(ctx context.Context, courseID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM intakes WHERE course_id = $1`, courseID)
	return err
}

func (r *intakeRepoPG) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*Intake, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+intakeCols+` FROM intakes WHERE course_id = $1 ORDER BY scheduled_time`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *intakeRepoPG) ListByUserInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*Intake, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+intakeCols+` FROM intakes
		WHERE user_id = $1 AND scheduled_time >= $2 AND scheduled_time <= $3
		ORDER BY scheduled_time`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *intakeRepoPG) ListScheduledInRange(ctx context.Context, from, to time.Time) ([]*Intake, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+intakeCols+` FROM intakes
		WHERE status = $1 AND scheduled_time >= $2 AND scheduled_time <= $3
		ORDER BY scheduled_time`, IntakeScheduled, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *intakeRepoPG) collect(rows pgx.Rows) ([]*Intake, error) {
	var items []*Intake
	for rows.Next() {
		in, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, in)
	}
	return items, rows.Err()
}

package postgres

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/geocoder89/coursehub/internal/domain/course"
	"github.com/geocoder89/coursehub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectCourseWithOwner = `
	SELECT c.id,
		c.title,
		c.description,
		c.estimated_time,
		c.materials_needed,
		c.user_id,
		c.created_at,
		c.updated_at,
		u.first_name,
		u.last_name,
		u.email_address
	FROM courses c
	JOIN users u ON u.id = c.user_id`

type CoursesRepo struct {
	pool    *pgxpool.Pool
	metrics *observability.Prom
}

func NewCoursesRepo(pool *pgxpool.Pool, metrics *observability.Prom) *CoursesRepo {
	return &CoursesRepo{pool: pool, metrics: metrics}
}

func (r *CoursesRepo) Create(ctx context.Context, c course.Course) (course.Course, error) {
	err := r.metrics.ObserveDB("courses.create", func() error {
		err := r.pool.QueryRow(ctx,
			`INSERT INTO courses (title, description, estimated_time, materials_needed, user_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			c.Title, c.Description, c.EstimatedTime, c.MaterialsNeeded, c.UserID, c.CreatedAt, c.UpdatedAt,
		).Scan(&c.ID)

		return constraintError(err)
	})

	if err != nil {
		return course.Course{}, err
	}

	return c, nil
}

func (r *CoursesRepo) List(ctx context.Context) ([]course.Course, error) {
	output := make([]course.Course, 0)

	err := r.metrics.ObserveDB("courses.list", func() error {
		rows, err := r.pool.Query(ctx, selectCourseWithOwner+` ORDER BY c.id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scanCourse(rows)
			if err != nil {
				return err
			}
			output = append(output, c)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *CoursesRepo) GetByID(ctx context.Context, id int64) (course.Course, error) {
	var c course.Course

	err := r.metrics.ObserveDB("courses.get", func() error {
		var err error
		c, err = scanCourse(r.pool.QueryRow(ctx, selectCourseWithOwner+` WHERE c.id = $1`, id))

		if errors.Is(err, pgx.ErrNoRows) {
			return course.ErrNotFound
		}
		return err
	})

	if err != nil {
		return course.Course{}, err
	}

	return c, nil
}

// Update writes only the fields present in req. updated_at is always touched
// so that the affected row count doubles as the existence check.
func (r *CoursesRepo) Update(ctx context.Context, id int64, req course.UpdateCourseRequest) error {
	query, args, err := buildCourseUpdate(id, req)
	if err != nil {
		return err
	}

	return r.metrics.ObserveDB("courses.update", func() error {
		tag, err := r.pool.Exec(ctx, query, args...)
		if err != nil {
			return constraintError(err)
		}

		// if there are no rows matching the id
		if tag.RowsAffected() == 0 {
			return course.ErrNotFound
		}
		return nil
	})
}

func (r *CoursesRepo) Delete(ctx context.Context, id int64) error {
	return r.metrics.ObserveDB("courses.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)

		if err != nil {
			return err
		}

		// if no rows were deleted as a result return a not found error
		if tag.RowsAffected() == 0 {
			return course.ErrNotFound
		}

		return nil
	})
}

func buildCourseUpdate(id int64, req course.UpdateCourseRequest) (string, []interface{}, error) {
	b := sq.Update("courses").
		PlaceholderFormat(sq.Dollar).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id})

	if req.Title.Set && req.Title.Value != nil {
		b = b.Set("title", *req.Title.Value)
	}
	if req.Description.Set && req.Description.Value != nil {
		b = b.Set("description", *req.Description.Value)
	}
	// a present null clears the column
	if req.EstimatedTime.Set {
		b = b.Set("estimated_time", req.EstimatedTime.Value)
	}
	if req.MaterialsNeeded.Set {
		b = b.Set("materials_needed", req.MaterialsNeeded.Value)
	}

	return b.ToSql()
}

func scanCourse(row pgx.Row) (course.Course, error) {
	var c course.Course

	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.EstimatedTime,
		&c.MaterialsNeeded,
		&c.UserID,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.Owner.FirstName,
		&c.Owner.LastName,
		&c.Owner.EmailAddress,
	)

	return c, err
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/geocoder89/coursehub/internal/domain/course"
	"github.com/geocoder89/coursehub/internal/observability"
)

const selectCourseWithOwner = `
	SELECT c.id, c.title, c.description, c.estimated_time, c.materials_needed, c.user_id,
		c.created_at, c.updated_at, u.first_name, u.last_name, u.email_address
	FROM courses c
	JOIN users u ON u.id = c.user_id`

type CoursesRepo struct {
	db      *sql.DB
	metrics *observability.Prom
}

func NewCoursesRepo(db *sql.DB, metrics *observability.Prom) *CoursesRepo {
	return &CoursesRepo{db: db, metrics: metrics}
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *CoursesRepo) Create(ctx context.Context, c course.Course) (course.Course, error) {
	err := r.metrics.ObserveDB("courses.create", func() error {
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO courses (title, description, estimated_time, materials_needed, user_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.Title, c.Description, c.EstimatedTime, c.MaterialsNeeded, c.UserID, c.CreatedAt, c.UpdatedAt,
		)
		if err != nil {
			return constraintError(err)
		}

		c.ID, err = res.LastInsertId()
		return err
	})

	if err != nil {
		return course.Course{}, err
	}

	return c, nil
}

func (r *CoursesRepo) List(ctx context.Context) ([]course.Course, error) {
	output := make([]course.Course, 0)

	err := r.metrics.ObserveDB("courses.list", func() error {
		rows, err := r.db.QueryContext(ctx, selectCourseWithOwner+` ORDER BY c.id ASC`)
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
		c, err = scanCourse(r.db.QueryRowContext(ctx, selectCourseWithOwner+` WHERE c.id = ?`, id))

		if errors.Is(err, sql.ErrNoRows) {
			return course.ErrNotFound
		}
		return err
	})

	if err != nil {
		return course.Course{}, err
	}

	return c, nil
}

func (r *CoursesRepo) Update(ctx context.Context, id int64, req course.UpdateCourseRequest) error {
	b := sq.Update("courses").
		Set("updated_at", time.Now().UTC()).
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

	query, args, err := b.ToSql()
	if err != nil {
		return err
	}

	return r.metrics.ObserveDB("courses.update", func() error {
		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return constraintError(err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return course.ErrNotFound
		}
		return nil
	})
}

func (r *CoursesRepo) Delete(ctx context.Context, id int64) error {
	return r.metrics.ObserveDB("courses.delete", func() error {
		res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
		if err != nil {
			return err
		}

		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return course.ErrNotFound
		}
		return nil
	})
}

func scanCourse(row scanner) (course.Course, error) {
	var (
		c               course.Course
		estimatedTime   sql.NullString
		materialsNeeded sql.NullString
	)

	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&estimatedTime,
		&materialsNeeded,
		&c.UserID,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.Owner.FirstName,
		&c.Owner.LastName,
		&c.Owner.EmailAddress,
	)
	if err != nil {
		return course.Course{}, err
	}

	if estimatedTime.Valid {
		c.EstimatedTime = &estimatedTime.String
	}
	if materialsNeeded.Valid {
		c.MaterialsNeeded = &materialsNeeded.String
	}

	return c, nil
}

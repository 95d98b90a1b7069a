package postgres

import (
	"errors"
	"strings"

	"github.com/geocoder89/coursehub/internal/domain/validation"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// columnFields maps table columns to their JSON field names.
var columnFields = map[string]string{
	"first_name":       "firstName",
	"last_name":        "lastName",
	"email_address":    "emailAddress",
	"password_hash":    "password",
	"title":            "title",
	"description":      "description",
	"estimated_time":   "estimatedTime",
	"materials_needed": "materialsNeeded",
	"user_id":          "userId",
}

// constraintError turns integrity constraint violations into validation
// errors. Any other error is returned unchanged.
func constraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		if strings.Contains(pgErr.ConstraintName, "email_address") {
			return validation.New(validation.MsgEmailTaken)
		}
		return validation.New(fieldFor(pgErr.ColumnName, pgErr.ConstraintName) + " must be unique")

	case pgerrcode.NotNullViolation, pgerrcode.CheckViolation:
		return validation.New(validation.RequiredMsg(fieldFor(pgErr.ColumnName, pgErr.ConstraintName)))

	case pgerrcode.ForeignKeyViolation:
		return validation.New(validation.MsgUnknownOwner)
	}

	return err
}

// fieldFor resolves the JSON field behind a violation, from the column when
// postgres reports one, else from a default constraint name like
// "courses_title_check".
func fieldFor(column, constraint string) string {
	if f, ok := columnFields[column]; ok {
		return f
	}

	for col, f := range columnFields {
		if strings.Contains(constraint, "_"+col+"_") {
			return f
		}
	}

	if column != "" {
		return column
	}
	return constraint
}

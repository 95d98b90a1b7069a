package sqlite

import (
	"errors"
	"strings"

	"github.com/geocoder89/coursehub/internal/domain/validation"
	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

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

// constraintError turns sqlite constraint failures into validation errors.
// sqlite only names the offending column in the message text.
func constraintError(err error) error {
	var sqliteErr *sqlitedriver.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}

	msg := sqliteErr.Error()

	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		if strings.Contains(msg, "email_address") {
			return validation.New(validation.MsgEmailTaken)
		}
		return validation.New(fieldIn(msg) + " must be unique")

	case sqlite3.SQLITE_CONSTRAINT_NOTNULL, sqlite3.SQLITE_CONSTRAINT_CHECK:
		return validation.New(validation.RequiredMsg(fieldIn(msg)))

	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return validation.New(validation.MsgUnknownOwner)
	}

	return err
}

func fieldIn(msg string) string {
	for col, f := range columnFields {
		if strings.Contains(msg, col) {
			return f
		}
	}
	return "value"
}

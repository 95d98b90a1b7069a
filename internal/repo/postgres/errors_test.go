package postgres

import (
	"errors"
	"testing"

	"github.com/geocoder89/coursehub/internal/domain/course"
	"github.com/geocoder89/coursehub/internal/domain/validation"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestConstraintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "duplicate_email",
			err:  &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_address_key"},
			want: []string{validation.MsgEmailTaken},
		},
		{
			name: "not_null_column",
			err:  &pgconn.PgError{Code: pgerrcode.NotNullViolation, ColumnName: "first_name"},
			want: []string{validation.RequiredMsg("firstName")},
		},
		{
			name: "check_constraint",
			err:  &pgconn.PgError{Code: pgerrcode.CheckViolation, ConstraintName: "courses_title_check"},
			want: []string{validation.RequiredMsg("title")},
		},
		{
			name: "unknown_owner",
			err:  &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "courses_user_id_fkey"},
			want: []string{validation.MsgUnknownOwner},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs, ok := validation.Messages(constraintError(tt.err))
			require.True(t, ok)
			assert.Equal(t, tt.want, msgs)
		})
	}
}

func TestConstraintError_PassesThroughOtherErrors(t *testing.T) {
	assert.NoError(t, constraintError(nil))

	plain := errors.New("connection reset")
	assert.Same(t, plain, constraintError(plain))

	deadlock := &pgconn.PgError{Code: pgerrcode.DeadlockDetected}
	_, ok := validation.Messages(constraintError(deadlock))
	assert.False(t, ok)
}

func TestBuildCourseUpdate(t *testing.T) {
	query, args, err := buildCourseUpdate(7, course.UpdateCourseRequest{
		Title:           course.Some("New title"),
		MaterialsNeeded: course.Some("laptop"),
	})
	require.NoError(t, err)

	assert.Equal(t, "UPDATE courses SET updated_at = NOW(), title = $1, materials_needed = $2 WHERE id = $3", query)
	assert.Equal(t, []interface{}{"New title", strPtr("laptop"), int64(7)}, args)
}

func TestBuildCourseUpdate_NullClearsOptionalColumn(t *testing.T) {
	query, args, err := buildCourseUpdate(2, course.UpdateCourseRequest{
		EstimatedTime: course.Null[string](),
	})
	require.NoError(t, err)

	assert.Equal(t, "UPDATE courses SET updated_at = NOW(), estimated_time = $1 WHERE id = $2", query)
	require.Len(t, args, 2)
	assert.Nil(t, args[0].(*string))
	assert.Equal(t, int64(2), args[1])
}

func TestBuildCourseUpdate_EmptyPatchStillTouchesRow(t *testing.T) {
	query, args, err := buildCourseUpdate(3, course.UpdateCourseRequest{})
	require.NoError(t, err)

	assert.Equal(t, "UPDATE courses SET updated_at = NOW() WHERE id = $1", query)
	assert.Equal(t, []interface{}{int64(3)}, args)
}

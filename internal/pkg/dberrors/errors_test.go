package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/yigit/examportal/internal/pkg/apperrors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "unique violation",
			err:  &pgconn.PgError{Code: CodeUniqueViolation, TableName: "levels", ConstraintName: "levels_program_id_level_key"},
			want: apperrors.ErrConflict,
		},
		{
			name: "foreign key violation",
			err:  fmt.Errorf("insert course: %w", &pgconn.PgError{Code: CodeForeignKeyViolation, TableName: "courses"}),
			want: apperrors.ErrInvalidReference,
		},
		{
			name: "check violation",
			err:  &pgconn.PgError{Code: CodeCheckViolation, TableName: "programs"},
			want: apperrors.ErrValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, Classify(tt.err), tt.want)
		})
	}
}

func TestClassify_PassThrough(t *testing.T) {
	plain := errors.New("connection reset")
	assert.Same(t, plain, Classify(plain))

	other := &pgconn.PgError{Code: "40001"}
	assert.Equal(t, error(other), Classify(other))
}

func TestIsDuplicateConstraintError(t *testing.T) {
	err := &pgconn.PgError{Code: CodeUniqueViolation, ConstraintName: "colleges_name_key"}

	assert.True(t, IsDuplicateConstraintError(err, "colleges_name_key"))
	assert.False(t, IsDuplicateConstraintError(err, "departments_name_key"))
	assert.False(t, IsDuplicateConstraintError(errors.New("boom"), "colleges_name_key"))
}

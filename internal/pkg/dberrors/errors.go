package dberrors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yigit/examportal/internal/pkg/apperrors"
)

// PostgreSQL error codes the repositories care about
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeCheckViolation      = "23514"
)

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == CodeUniqueViolation && pgErr.ConstraintName == constraintName
}

// Classify maps constraint violations onto application errors.
// Errors that are not PostgreSQL constraint violations are returned unchanged.
func Classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case CodeUniqueViolation:
		return fmt.Errorf("%w: %s violates %s", apperrors.ErrConflict, pgErr.TableName, pgErr.ConstraintName)
	case CodeForeignKeyViolation:
		return fmt.Errorf("%w: %s violates %s", apperrors.ErrInvalidReference, pgErr.TableName, pgErr.ConstraintName)
	case CodeCheckViolation:
		return fmt.Errorf("%w: %s violates %s", apperrors.ErrValidationFailed, pgErr.TableName, pgErr.ConstraintName)
	default:
		return err
	}
}

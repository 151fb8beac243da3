package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

// Storage outcomes shared by every desk backend. Missing rows are reported with
// sql.ErrNoRows.
var (
	ErrAlreadyVerified = errors.New("participant already verified")
	ErrCollegeNotFound = errors.New("college not found")
	ErrAdminExists     = errors.New("admin username already taken")
)

func pgCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == pgerrcode.UniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgCode(err) == pgerrcode.ForeignKeyViolation
}

// constraintName returns the violated constraint, if the driver reported one.
func constraintName(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}

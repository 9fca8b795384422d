package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

var uniqueViolationMessages = []string{
	"duplicate key value",
	"unique constraint failed",
	"unique constraint",
	"duplicated key",
}

// IsUniqueViolation reports whether err is a unique-constraint failure. Structured
// driver codes are checked first; message matching covers drivers that only
// return text. When constraintName is provided the error must also reference it.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		if pgxErr.Code != pgUniqueViolation {
			return false
		}
		return constraintName == "" || pgxErr.ConstraintName == constraintName || strings.Contains(pgxErr.Error(), constraintName)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if string(pqErr.Code) != pgUniqueViolation {
			return false
		}
		return constraintName == "" || pqErr.Constraint == constraintName || strings.Contains(pqErr.Error(), constraintName)
	}

	msg := strings.ToLower(err.Error())
	if constraintName != "" && !strings.Contains(msg, strings.ToLower(constraintName)) {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	for _, fragment := range uniqueViolationMessages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err is GORM's record-not-found sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

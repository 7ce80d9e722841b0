package dbx

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation   = "23505"
	mysqlDuplicateEntry = 1062
)

// IsUniqueViolation reports whether err (or anything it wraps) is a
// unique-constraint violation reported by the PostgreSQL or MySQL driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}

	return false
}

// ConstraintName returns the name of the violated constraint or key, or an
// empty string when the driver does not report one. MySQL only carries it in
// the message ("Duplicate entry 'x' for key 'profiles.profiles_username_key'").
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		_, key, ok := strings.Cut(myErr.Message, "for key '")
		if !ok {
			return ""
		}
		key = strings.TrimSuffix(key, "'")
		if _, name, ok := strings.Cut(key, "."); ok {
			return name
		}
		return key
	}

	return ""
}

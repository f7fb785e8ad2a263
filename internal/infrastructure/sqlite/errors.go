package sqlite

import "strings"

// isUniqueConstraintErr detects a UNIQUE constraint violation.
// modernc.org/sqlite wraps the underlying libsql error message rather
// than exposing a typed sentinel through database/sql, so this is the
// same substring check the sqlite driver's own tests use to recognize
// constraint failures.
func isUniqueConstraintErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}

// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as the
// services and handlers to distinguish between failure scenarios without
// inspecting driver errors.
package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert collides with the unique email
// index of a credential table.
var ErrEmailExists = errors.New("email already exists")

// ErrConflict is returned when a booking can no longer be moved by the
// caller: it was claimed by another professional or is already closed.
var ErrConflict = errors.New("conflict")

// ErrNotEligible is returned when a professional acts on a booking outside
// their service type.
var ErrNotEligible = errors.New("not eligible")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDuplicateEntry
	}
	// sqlite reports "UNIQUE constraint failed: <table>.<column>"
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}

// notFound converts sql.ErrNoRows into ErrNotFound and leaves other errors
// untouched.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

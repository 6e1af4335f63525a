// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services to distinguish between different failure scenarios without
// inspecting driver errors.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrOpportunityNotFound  = errors.New("opportunity not found")
	ErrApplicationNotFound  = errors.New("application not found")
	ErrMentorshipNotFound   = errors.New("mentorship request not found")
	ErrWorkshopNotFound     = errors.New("workshop not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrNotificationNotFound = errors.New("notification not found")
)

// ErrDuplicate is returned when an insert violates a unique key.
var ErrDuplicate = errors.New("duplicate key")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete cannot be performed because
// dependent records exist.
var ErrConflict = errors.New("conflict")

// ErrCapacityReached is returned when a workshop has no free seats left.
var ErrCapacityReached = errors.New("capacity reached")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// placeholders returns "?,?,?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func idArgs(ids []uint64) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

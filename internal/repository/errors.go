// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers to distinguish
// between different failure scenarios without inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write cannot be performed because of
// conflicting state, such as a reservation whose dates intersect an
// existing reservation while overlap rejection is enabled.
var ErrConflict = errors.New("conflict")

// ErrCostumeNotFound is returned when a costume id does not resolve.
var ErrCostumeNotFound = errors.New("costume not found")

// ErrReservationNotFound is returned when a reservation id does not resolve.
var ErrReservationNotFound = errors.New("reservation not found")

// isDuplicateKey reports whether err is a MySQL unique violation (1062).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. Missing
// rows are reported as sql.ErrNoRows straight from database/sql, so only
// the business outcomes that have no stdlib sentinel are declared here.
package repository

import (
	"errors"
	"strings"
)

// ErrAlreadyRemoved is returned when a soft delete targets a record
// whose lifecycle flags are already flipped. It is an expected business
// outcome, not a failure: handlers translate it into a 409 response
// with error:false.
var ErrAlreadyRemoved = errors.New("already removed")

// ErrDuplicate is returned when an insert hits a uniqueness constraint,
// such as the (user_id, book_id, active_key) backstop index on ratings
// and reviews. Callers racing on the same pair should retry the write
// as an update.
var ErrDuplicate = errors.New("duplicate record")

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (error code 1062).
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "1062")
}

package model

import "time"

// Category is a row in the `categories` table. Category names are
// unique among non-deleted categories.
type Category struct {
	ID        uint64 // categories.id
	Name      string // categories.name
	Code      string // categories.code
	Lifecycle        // categories.status / is_active / is_deleted
	CreatedAt time.Time
	UpdatedAt time.Time
}

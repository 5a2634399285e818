package model

import "time"

// Review is one user's free-text review of one book, mirroring the
// `reviews` table. Same one-per-(user,book) rule and lifecycle as
// Rating, but an independent record: a user may rate without reviewing
// and vice versa.
type Review struct {
	ID        uint64 // reviews.id
	UserID    uint64 // reviews.user_id
	BookID    uint64 // reviews.book_id
	Body      string // reviews.body
	Lifecycle        // reviews.status / is_active / is_deleted
	CreatedAt time.Time
	UpdatedAt time.Time
}

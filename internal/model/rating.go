package model

import "time"

// Rating is one user's score for one book, mirroring the `ratings`
// table. At most one active rating exists per (user, book) pair; a
// resubmission updates the existing row in place. The score column is
// VARCHAR in the legacy schema, so Score is a string here and is coerced
// to a number only at the aggregation boundary.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – author of the rating.
//  BookID    – rated book.
//  Score     – numeric score stored as text.
//  Lifecycle – shared soft-delete flags.
type Rating struct {
	ID        uint64 // ratings.id
	UserID    uint64 // ratings.user_id
	BookID    uint64 // ratings.book_id
	Score     string // ratings.score
	Lifecycle        // ratings.status / is_active / is_deleted
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BookRating is the derived aggregate for a book: the arithmetic mean of
// all active, parseable scores and how many of them there are. A book
// with no active ratings has the zero value, which is a valid state and
// not an error.
type BookRating struct {
	Average float64 `json:"averageRating"`
	Count   int     `json:"totalRatings"`
}

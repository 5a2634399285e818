package repository

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/AmitSaha9928/book-stack/internal/model"
)

const ratingCols = "id,user_id,book_id,score,status,is_active,is_deleted,created_at,updated_at"

// RatingRepo provides CRUD and aggregation over the ratings table. It
// owns the one-active-rating-per-(user,book) rule: submissions go
// through Submit, which either inserts a new row or updates the
// existing active one. The table carries a unique index over
// (user_id, book_id, active_key) as a backstop against concurrent first
// submissions: active_key is 1 on the live row and NULL on removed
// ones, so only live rows compete under the index. A duplicate-key
// error from it is retried as an update rather than surfaced.
type RatingRepo struct{ DB *sql.DB }

func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{DB: db} }

func scanRating(row *sql.Row) (model.Rating, error) {
	var rt model.Rating
	err := row.Scan(&rt.ID, &rt.UserID, &rt.BookID, &rt.Score,
		&rt.Status, &rt.IsActive, &rt.IsDeleted, &rt.CreatedAt, &rt.UpdatedAt)
	return rt, err
}

// GetActiveByUserAndBook returns the single active rating for the pair,
// or sql.ErrNoRows when the user has not rated the book.
func (r *RatingRepo) GetActiveByUserAndBook(ctx context.Context, userID, bookID uint64) (model.Rating, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+ratingCols+" FROM ratings WHERE user_id=? AND book_id=? AND is_active=1 AND is_deleted=0 LIMIT 1",
		userID, bookID)
	return scanRating(row)
}

// GetByID fetches a rating regardless of lifecycle state.
func (r *RatingRepo) GetByID(ctx context.Context, id uint64) (model.Rating, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+ratingCols+" FROM ratings WHERE id=? LIMIT 1", id)
	return scanRating(row)
}

// Submit records a user's score for a book, keeping at most one active
// rating per (user, book) pair. The lookup and the branch are explicit:
// no existing active rating means insert, an existing one means update
// its score in place, preserving the original row identity and creation
// time. A duplicate-key conflict from a concurrent first submission is
// resolved by falling back to the update path. Returns the resulting
// rating and whether a new row was created.
func (r *RatingRepo) Submit(ctx context.Context, userID, bookID uint64, score string) (model.Rating, bool, error) {
	_, err := r.GetActiveByUserAndBook(ctx, userID, bookID)
	switch {
	case err == nil:
		return r.updateScore(ctx, userID, bookID, score)
	case err != sql.ErrNoRows:
		return model.Rating{}, false, err
	}

	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO ratings (user_id, book_id, score, active_key) VALUES (?,?,?,1)",
		userID, bookID, score)
	if err != nil {
		if isDuplicateKey(err) {
			// Lost the race against a concurrent submission for the
			// same pair; the unique index kept the invariant, so
			// retry as an update of the row that won.
			return r.updateScore(ctx, userID, bookID, score)
		}
		return model.Rating{}, false, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Rating{}, false, err
	}
	created, err := r.GetByID(ctx, uint64(id))
	return created, true, err
}

// updateScore rewrites the score of the active rating for the pair. It
// targets the pair rather than a row id because the duplicate-key
// fallback does not know which row won the insert race.
func (r *RatingRepo) updateScore(ctx context.Context, userID, bookID uint64, score string) (model.Rating, bool, error) {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE ratings SET score=? WHERE user_id=? AND book_id=? AND is_active=1 AND is_deleted=0",
		score, userID, bookID)
	if err != nil {
		return model.Rating{}, false, err
	}
	updated, err := r.GetActiveByUserAndBook(ctx, userID, bookID)
	return updated, false, err
}

// ListActive returns every active rating, newest first.
func (r *RatingRepo) ListActive(ctx context.Context) ([]model.Rating, error) {
	return r.list(ctx,
		"SELECT "+ratingCols+" FROM ratings WHERE is_active=1 AND is_deleted=0 ORDER BY created_at DESC")
}

// ListActiveByUser returns a user's active ratings, newest first.
func (r *RatingRepo) ListActiveByUser(ctx context.Context, userID uint64) ([]model.Rating, error) {
	return r.list(ctx,
		"SELECT "+ratingCols+" FROM ratings WHERE user_id=? AND is_active=1 AND is_deleted=0 ORDER BY created_at DESC",
		userID)
}

// ListActiveByBook returns a book's active ratings, newest first.
func (r *RatingRepo) ListActiveByBook(ctx context.Context, bookID uint64) ([]model.Rating, error) {
	return r.list(ctx,
		"SELECT "+ratingCols+" FROM ratings WHERE book_id=? AND is_active=1 AND is_deleted=0 ORDER BY created_at DESC",
		bookID)
}

func (r *RatingRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Rating, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Rating
	for rows.Next() {
		var rt model.Rating
		if err := rows.Scan(&rt.ID, &rt.UserID, &rt.BookID, &rt.Score,
			&rt.Status, &rt.IsActive, &rt.IsDeleted, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

// AverageForBook derives the aggregate rating for a book from its
// active ratings at query time; nothing is cached in the table. Scores
// are VARCHAR in the legacy schema, so each one is parsed here and
// values that do not parse as numbers are left out of both the sum and
// the count. A book with no active ratings yields the zero aggregate.
func (r *RatingRepo) AverageForBook(ctx context.Context, bookID uint64) (model.BookRating, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT score FROM ratings WHERE book_id=? AND is_active=1 AND is_deleted=0", bookID)
	if err != nil {
		return model.BookRating{}, err
	}
	defer rows.Close()

	var sum float64
	var count int
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return model.BookRating{}, err
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue // legacy rows may hold junk; skip rather than fail
		}
		sum += v
		count++
	}
	if err := rows.Err(); err != nil {
		return model.BookRating{}, err
	}
	if count == 0 {
		return model.BookRating{}, nil
	}
	return model.BookRating{Average: sum / float64(count), Count: count}, nil
}

// SoftDelete marks a rating removed without touching the row's data.
// The pair's active_key is cleared so a fresh rating for the same
// (user, book) can be inserted afterwards and later removed again.
func (r *RatingRepo) SoftDelete(ctx context.Context, id uint64) error {
	return softDeleteKeyed(ctx, r.DB, "ratings", id)
}

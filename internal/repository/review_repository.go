package repository

import (
	"context"
	"database/sql"

	"github.com/AmitSaha9928/book-stack/internal/model"
)

const reviewCols = "id,user_id,book_id,body,status,is_active,is_deleted,created_at,updated_at"

// ReviewRepo mirrors RatingRepo for free-text reviews: one active
// review per (user, book) pair, enforced by an explicit find-or-update
// with the table's unique (user_id, book_id, active_key) index as the
// backstop for concurrent first submissions. active_key is 1 on the
// live row and NULL on removed ones. Reviews and ratings are
// independent rows; a user may have either without the other.
type ReviewRepo struct{ DB *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{DB: db} }

func scanReview(row *sql.Row) (model.Review, error) {
	var rv model.Review
	err := row.Scan(&rv.ID, &rv.UserID, &rv.BookID, &rv.Body,
		&rv.Status, &rv.IsActive, &rv.IsDeleted, &rv.CreatedAt, &rv.UpdatedAt)
	return rv, err
}

// GetActiveByUserAndBook returns the single active review for the pair,
// or sql.ErrNoRows when the user has not reviewed the book.
func (r *ReviewRepo) GetActiveByUserAndBook(ctx context.Context, userID, bookID uint64) (model.Review, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+reviewCols+" FROM reviews WHERE user_id=? AND book_id=? AND is_active=1 AND is_deleted=0 LIMIT 1",
		userID, bookID)
	return scanReview(row)
}

// GetByID fetches a review regardless of lifecycle state.
func (r *ReviewRepo) GetByID(ctx context.Context, id uint64) (model.Review, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+reviewCols+" FROM reviews WHERE id=? LIMIT 1", id)
	return scanReview(row)
}

// Submit creates the user's review of a book or, when one already
// exists, replaces its body in place. Row identity and creation time
// survive a resubmission. Duplicate-key conflicts from concurrent first
// submissions fall back to the update path. Returns the resulting
// review and whether a new row was created.
func (r *ReviewRepo) Submit(ctx context.Context, userID, bookID uint64, body string) (model.Review, bool, error) {
	_, err := r.GetActiveByUserAndBook(ctx, userID, bookID)
	switch {
	case err == nil:
		return r.updateBody(ctx, userID, bookID, body)
	case err != sql.ErrNoRows:
		return model.Review{}, false, err
	}

	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO reviews (user_id, book_id, body, active_key) VALUES (?,?,?,1)",
		userID, bookID, body)
	if err != nil {
		if isDuplicateKey(err) {
			return r.updateBody(ctx, userID, bookID, body)
		}
		return model.Review{}, false, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Review{}, false, err
	}
	created, err := r.GetByID(ctx, uint64(id))
	return created, true, err
}

func (r *ReviewRepo) updateBody(ctx context.Context, userID, bookID uint64, body string) (model.Review, bool, error) {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE reviews SET body=? WHERE user_id=? AND book_id=? AND is_active=1 AND is_deleted=0",
		body, userID, bookID)
	if err != nil {
		return model.Review{}, false, err
	}
	updated, err := r.GetActiveByUserAndBook(ctx, userID, bookID)
	return updated, false, err
}

// UpdateBodyByID rewrites the body of an active review addressed by id.
func (r *ReviewRepo) UpdateBodyByID(ctx context.Context, id uint64, body string) (model.Review, error) {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE reviews SET body=? WHERE id=? AND is_active=1 AND is_deleted=0", body, id)
	if err != nil {
		return model.Review{}, err
	}
	// A same-value update affects zero rows in MySQL, so re-read the
	// row instead of trusting RowsAffected; an inactive review reports
	// as missing.
	rv, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Review{}, err
	}
	if !rv.IsActive || rv.IsDeleted {
		return model.Review{}, sql.ErrNoRows
	}
	return rv, nil
}

// ListAll returns every non-deleted review, newest first.
func (r *ReviewRepo) ListAll(ctx context.Context) ([]model.Review, error) {
	return r.list(ctx,
		"SELECT "+reviewCols+" FROM reviews WHERE is_deleted=0 ORDER BY created_at DESC")
}

// ListActiveByUser returns a user's active reviews, newest first.
func (r *ReviewRepo) ListActiveByUser(ctx context.Context, userID uint64) ([]model.Review, error) {
	return r.list(ctx,
		"SELECT "+reviewCols+" FROM reviews WHERE user_id=? AND is_active=1 AND is_deleted=0 ORDER BY created_at DESC",
		userID)
}

// ListActiveByBook returns a book's active reviews, newest first.
func (r *ReviewRepo) ListActiveByBook(ctx context.Context, bookID uint64) ([]model.Review, error) {
	return r.list(ctx,
		"SELECT "+reviewCols+" FROM reviews WHERE book_id=? AND is_active=1 AND is_deleted=0 ORDER BY created_at DESC",
		bookID)
}

func (r *ReviewRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Review, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Review
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.BookID, &rv.Body,
			&rv.Status, &rv.IsActive, &rv.IsDeleted, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

// SoftDelete marks a review removed without touching the row's data.
// The pair's active_key is cleared so the same (user, book) can be
// reviewed again later.
func (r *ReviewRepo) SoftDelete(ctx context.Context, id uint64) error {
	return softDeleteKeyed(ctx, r.DB, "reviews", id)
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// softDelete implements the shared soft-delete policy: the row is never
// removed, its lifecycle flags are flipped and every later read filters
// it out. The table name always comes from a call-site constant, never
// from request input.
//
// Outcomes: nil when the row was active and is now deleted,
// ErrAlreadyRemoved when it was already deleted, sql.ErrNoRows when no
// such row exists.
func softDelete(ctx context.Context, db *sql.DB, table string, id uint64) error {
	return softDeleteSet(ctx, db, table, "status=0, is_active=0, is_deleted=1", id)
}

// softDeleteKeyed is softDelete for ratings and reviews, whose
// pair-uniqueness backstop is a unique index over
// (user_id, book_id, active_key). The live row carries active_key=1;
// removal clears it to NULL. Unique indexes skip NULL keys, so a pair
// can go through any number of submit/remove cycles and the removed
// rows accumulate without ever colliding under the index.
func softDeleteKeyed(ctx context.Context, db *sql.DB, table string, id uint64) error {
	return softDeleteSet(ctx, db, table, "status=0, is_active=0, is_deleted=1, active_key=NULL", id)
}

func softDeleteSet(ctx context.Context, db *sql.DB, table, set string, id uint64) error {
	res, err := db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET %s WHERE id=? AND is_deleted=0", table, set), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	// Zero rows touched: either the record is gone or it was already
	// soft-deleted. Look it up to tell the two apart.
	var deleted bool
	err = db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT is_deleted FROM %s WHERE id=? LIMIT 1", table), id).Scan(&deleted)
	if err != nil {
		return err // includes sql.ErrNoRows for a missing record
	}
	if deleted {
		return ErrAlreadyRemoved
	}
	return sql.ErrNoRows
}

package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

const selectRatingByPair = "SELECT " + ratingCols + " FROM ratings WHERE user_id=? AND book_id=? AND is_active=1 AND is_deleted=0 LIMIT 1"

func newRatingRepoWithMock(t *testing.T) (*RatingRepo, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewRatingRepo(db), mock, db
}

func ratingRow(id, userID, bookID uint64, score string, active bool) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "user_id", "book_id", "score", "status", "is_active", "is_deleted", "created_at", "updated_at"}).
		AddRow(id, userID, bookID, score, active, active, !active, now, now)
}

func TestSubmit_CreatesWhenNoActiveRating(t *testing.T) {
	repo, mock, db := newRatingRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(selectRatingByPair)).
		WithArgs(uint64(1), uint64(2)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ratings (user_id, book_id, score, active_key) VALUES (?,?,?,1)")).
		WithArgs(uint64(1), uint64(2), "5").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+ratingCols+" FROM ratings WHERE id=? LIMIT 1")).
		WithArgs(uint64(7)).
		WillReturnRows(ratingRow(7, 1, 2, "5", true))

	got, created, err := repo.Submit(context.Background(), 1, 2, "5")
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if !created {
		t.Fatal("expected a new rating to be created")
	}
	if got.ID != 7 || got.Score != "5" {
		t.Fatalf("unexpected rating: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSubmit_UpdatesExistingRatingInPlace(t *testing.T) {
	repo, mock, db := newRatingRepoWithMock(t)
	defer db.Close()

	// Resubmission must rewrite the existing row, never insert a second
	// active rating for the pair.
	mock.ExpectQuery(regexp.QuoteMeta(selectRatingByPair)).
		WithArgs(uint64(1), uint64(2)).
		WillReturnRows(ratingRow(7, 1, 2, "5", true))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE ratings SET score=? WHERE user_id=? AND book_id=? AND is_active=1 AND is_deleted=0")).
		WithArgs("2", uint64(1), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectRatingByPair)).
		WithArgs(uint64(1), uint64(2)).
		WillReturnRows(ratingRow(7, 1, 2, "2", true))

	got, created, err := repo.Submit(context.Background(), 1, 2, "2")
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if created {
		t.Fatal("resubmission must not create a new row")
	}
	if got.ID != 7 || got.Score != "2" {
		t.Fatalf("unexpected rating: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSubmit_DuplicateKeyFallsBackToUpdate(t *testing.T) {
	repo, mock, db := newRatingRepoWithMock(t)
	defer db.Close()

	// Concurrent first submissions: the lookup sees nothing, the insert
	// loses against the unique (user_id, book_id, active_key) index, and
	// the conflict is retried as an update of the row that won.
	mock.ExpectQuery(regexp.QuoteMeta(selectRatingByPair)).
		WithArgs(uint64(1), uint64(2)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ratings (user_id, book_id, score, active_key) VALUES (?,?,?,1)")).
		WithArgs(uint64(1), uint64(2), "4").
		WillReturnError(&mysqlDupErr{})
	mock.ExpectExec(regexp.QuoteMeta("UPDATE ratings SET score=? WHERE user_id=? AND book_id=? AND is_active=1 AND is_deleted=0")).
		WithArgs("4", uint64(1), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectRatingByPair)).
		WithArgs(uint64(1), uint64(2)).
		WillReturnRows(ratingRow(9, 1, 2, "4", true))

	got, created, err := repo.Submit(context.Background(), 1, 2, "4")
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if created {
		t.Fatal("duplicate-key fallback must report an update")
	}
	if got.ID != 9 || got.Score != "4" {
		t.Fatalf("unexpected rating: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

type mysqlDupErr struct{}

func (*mysqlDupErr) Error() string { return "Error 1062 (23000): Duplicate entry '1-2-1'" }

func TestAverageForBook_SkipsUnparseableScores(t *testing.T) {
	repo, mock, db := newRatingRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"score"}).
		AddRow("3").AddRow("4").AddRow("5").AddRow("not-a-number")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT score FROM ratings WHERE book_id=? AND is_active=1 AND is_deleted=0")).
		WithArgs(uint64(11)).
		WillReturnRows(rows)

	agg, err := repo.AverageForBook(context.Background(), 11)
	if err != nil {
		t.Fatalf("AverageForBook error: %v", err)
	}
	if agg.Average != 4.0 || agg.Count != 3 {
		t.Fatalf("want average=4 count=3, got %+v", agg)
	}
}

func TestAverageForBook_EmptyStateIsNotAnError(t *testing.T) {
	repo, mock, db := newRatingRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT score FROM ratings WHERE book_id=? AND is_active=1 AND is_deleted=0")).
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"score"}))

	agg, err := repo.AverageForBook(context.Background(), 11)
	if err != nil {
		t.Fatalf("AverageForBook error: %v", err)
	}
	if agg.Average != 0 || agg.Count != 0 {
		t.Fatalf("want zero aggregate, got %+v", agg)
	}
}

func TestSoftDelete_FlipsFlagsOnce(t *testing.T) {
	repo, mock, db := newRatingRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE ratings SET status=0, is_active=0, is_deleted=1, active_key=NULL WHERE id=? AND is_deleted=0")).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SoftDelete(context.Background(), 7); err != nil {
		t.Fatalf("SoftDelete error: %v", err)
	}
}

func TestSubmitRemoveCycle_RepeatsCleanly(t *testing.T) {
	repo, mock, db := newRatingRepoWithMock(t)
	defer db.Close()

	insertSQL := regexp.QuoteMeta("INSERT INTO ratings (user_id, book_id, score, active_key) VALUES (?,?,?,1)")
	deleteSQL := regexp.QuoteMeta("UPDATE ratings SET status=0, is_active=0, is_deleted=1, active_key=NULL WHERE id=? AND is_deleted=0")
	byIDSQL := regexp.QuoteMeta("SELECT " + ratingCols + " FROM ratings WHERE id=? LIMIT 1")

	// rate: first submission inserts row 7.
	mock.ExpectQuery(regexp.QuoteMeta(selectRatingByPair)).
		WithArgs(uint64(1), uint64(2)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(insertSQL).
		WithArgs(uint64(1), uint64(2), "5").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(byIDSQL).
		WithArgs(uint64(7)).
		WillReturnRows(ratingRow(7, 1, 2, "5", true))

	// remove: clears the pair's slot under the backstop index.
	mock.ExpectExec(deleteSQL).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// rate again: the removed row no longer holds the index key, so a
	// fresh insert succeeds.
	mock.ExpectQuery(regexp.QuoteMeta(selectRatingByPair)).
		WithArgs(uint64(1), uint64(2)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(insertSQL).
		WithArgs(uint64(1), uint64(2), "3").
		WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectQuery(byIDSQL).
		WithArgs(uint64(8)).
		WillReturnRows(ratingRow(8, 1, 2, "3", true))

	// remove again: tombstone rows carry NULL keys, so the second
	// removal cannot collide with the first one's row.
	mock.ExpectExec(deleteSQL).
		WithArgs(uint64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if _, created, err := repo.Submit(context.Background(), 1, 2, "5"); err != nil || !created {
		t.Fatalf("first Submit: created=%v err=%v", created, err)
	}
	if err := repo.SoftDelete(context.Background(), 7); err != nil {
		t.Fatalf("first SoftDelete error: %v", err)
	}
	if _, created, err := repo.Submit(context.Background(), 1, 2, "3"); err != nil || !created {
		t.Fatalf("second Submit: created=%v err=%v", created, err)
	}
	if err := repo.SoftDelete(context.Background(), 8); err != nil {
		t.Fatalf("second SoftDelete error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSoftDelete_AlreadyRemoved(t *testing.T) {
	repo, mock, db := newRatingRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE ratings SET status=0, is_active=0, is_deleted=1, active_key=NULL WHERE id=? AND is_deleted=0")).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT is_deleted FROM ratings WHERE id=? LIMIT 1")).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"is_deleted"}).AddRow(true))

	if err := repo.SoftDelete(context.Background(), 7); err != ErrAlreadyRemoved {
		t.Fatalf("expected ErrAlreadyRemoved, got %v", err)
	}
}

func TestSoftDelete_MissingRow(t *testing.T) {
	repo, mock, db := newRatingRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE ratings SET status=0, is_active=0, is_deleted=1, active_key=NULL WHERE id=? AND is_deleted=0")).
		WithArgs(uint64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT is_deleted FROM ratings WHERE id=? LIMIT 1")).
		WithArgs(uint64(404)).
		WillReturnError(sql.ErrNoRows)

	if err := repo.SoftDelete(context.Background(), 404); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

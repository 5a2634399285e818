package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmitSaha9928/book-stack/internal/repository"
)

func newBookEnv(t *testing.T) (*BookHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	h := NewBookHandler(repository.NewBookRepo(db), repository.NewCategoryRepo(db))
	return h, mock, func() { db.Close() }
}

func ownedBookRows(id, ownerID uint64, title string, categoryID uint64) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(strings.Split(bookCols, ",")).
		AddRow(id, title, nil, 39.99, 380, "Donovan", ownerID, categoryID, "cover.png", true, true, false, now, now)
}

func updateBookBody(title string) string {
	return `{"bookTitle":"` + title + `","bookPrice":39.99,"amountOfPage":380,"authorName":"Donovan","categoryId":2,"bookImg":"cover.png"}`
}

func bookUpdateCtx(e *echo.Echo, body string, uid uint64) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPut, "/v1/books/5", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("5")
	asMember(c, uid)
	return c, rec
}

func TestUpdateBook_AuthorRewritesFields(t *testing.T) {
	h, mock, done := newBookEnv(t)
	defer done()
	e := echo.New()

	byIDSQL := regexp.QuoteMeta("SELECT " + bookCols + " FROM books WHERE id=? AND is_active=1 AND is_deleted=0 LIMIT 1")
	mock.ExpectQuery(byIDSQL).
		WithArgs(uint64(5)).
		WillReturnRows(ownedBookRows(5, 7, "Old Title", 2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM books WHERE title=? LIMIT 1")).
		WithArgs("New Title").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE books SET title=?, summary=?, price=?, page_count=?, author_name=?, category_id=?, book_img=? WHERE id=? AND is_active=1 AND is_deleted=0")).
		WithArgs("New Title", nil, 39.99, uint32(380), "Donovan", uint64(2), "cover.png", uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(byIDSQL).
		WithArgs(uint64(5)).
		WillReturnRows(ownedBookRows(5, 7, "New Title", 2))

	c, rec := bookUpdateCtx(e, updateBookBody("New Title"), 7)
	require.NoError(t, h.Update(c))

	resp := decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, resp.Error)
	assert.Equal(t, "book updated successfully", resp.Message)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBook_RenameToTakenTitleIsConflictNotError(t *testing.T) {
	h, mock, done := newBookEnv(t)
	defer done()
	e := echo.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+bookCols+" FROM books WHERE id=? AND is_active=1 AND is_deleted=0 LIMIT 1")).
		WithArgs(uint64(5)).
		WillReturnRows(ownedBookRows(5, 7, "Old Title", 2))
	// The rename check spans every row, soft-deleted books included.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM books WHERE title=? LIMIT 1")).
		WithArgs("Taken Title").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

	c, rec := bookUpdateCtx(e, updateBookBody("Taken Title"), 7)
	require.NoError(t, h.Update(c))

	resp := decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, resp.Error)
	assert.Equal(t, "book title already exists", resp.Message)
}

func TestUpdateBook_KeepingTitleSkipsUniquenessCheck(t *testing.T) {
	h, mock, done := newBookEnv(t)
	defer done()
	e := echo.New()

	byIDSQL := regexp.QuoteMeta("SELECT " + bookCols + " FROM books WHERE id=? AND is_active=1 AND is_deleted=0 LIMIT 1")
	mock.ExpectQuery(byIDSQL).
		WithArgs(uint64(5)).
		WillReturnRows(ownedBookRows(5, 7, "Same Title", 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE books SET title=?, summary=?, price=?, page_count=?, author_name=?, category_id=?, book_img=? WHERE id=? AND is_active=1 AND is_deleted=0")).
		WithArgs("Same Title", nil, 39.99, uint32(380), "Donovan", uint64(2), "cover.png", uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(byIDSQL).
		WithArgs(uint64(5)).
		WillReturnRows(ownedBookRows(5, 7, "Same Title", 2))

	c, rec := bookUpdateCtx(e, updateBookBody("Same Title"), 7)
	require.NoError(t, h.Update(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBook_OtherMembersBookIsForbidden(t *testing.T) {
	h, mock, done := newBookEnv(t)
	defer done()
	e := echo.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+bookCols+" FROM books WHERE id=? AND is_active=1 AND is_deleted=0 LIMIT 1")).
		WithArgs(uint64(5)).
		WillReturnRows(ownedBookRows(5, 7, "Old Title", 2))

	c, rec := bookUpdateCtx(e, updateBookBody("New Title"), 99)
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetBooksByUser(t *testing.T) {
	h, mock, done := newBookEnv(t)
	defer done()
	e := echo.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+bookCols+" FROM books WHERE insertion_user_id=? AND is_active=1 AND is_deleted=0 ORDER BY created_at DESC")).
		WithArgs(uint64(7)).
		WillReturnRows(ownedBookRows(5, 7, "The Go Programming Language", 2))

	req := httptest.NewRequest(http.MethodGet, "/v1/books/user/7", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("7")
	require.NoError(t, h.GetByUser(c))

	resp := decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, resp.Error)
	assert.Equal(t, "books by user", resp.Message)
	books, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, books, 1)
}

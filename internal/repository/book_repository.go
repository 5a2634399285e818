package repository

import (
	"context"
	"database/sql"

	"github.com/AmitSaha9928/book-stack/internal/model"
)

const bookCols = "id,title,summary,price,page_count,author_name,insertion_user_id,category_id,book_img,status,is_active,is_deleted,created_at,updated_at"

type BookRepo struct{ DB *sql.DB }

func NewBookRepo(db *sql.DB) *BookRepo { return &BookRepo{DB: db} }

func scanBook(row *sql.Row) (model.Book, error) {
	var b model.Book
	var summary sql.NullString
	err := row.Scan(&b.ID, &b.Title, &summary, &b.Price, &b.PageCount,
		&b.AuthorName, &b.InsertionUserID, &b.CategoryID, &b.BookImg,
		&b.Status, &b.IsActive, &b.IsDeleted, &b.CreatedAt, &b.UpdatedAt)
	if summary.Valid {
		v := summary.String
		b.Summary = &v
	}
	return b, err
}

// TitleExists checks the title against every book row, soft-deleted
// ones included. Deleting a book therefore does not free its title for
// reuse; that matches the historical behavior of the catalog.
func (r *BookRepo) TitleExists(ctx context.Context, title string) (bool, error) {
	var id uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM books WHERE title=? LIMIT 1", title).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create inserts a book and returns its ID.
func (r *BookRepo) Create(ctx context.Context, b model.Book) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO books (title,summary,price,page_count,author_name,insertion_user_id,category_id,book_img) VALUES (?,?,?,?,?,?,?,?)",
		b.Title, b.Summary, b.Price, b.PageCount, b.AuthorName,
		b.InsertionUserID, b.CategoryID, b.BookImg)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update rewrites the editable fields of an active book and returns the
// resulting row. The row is re-read afterwards because MySQL reports
// zero affected rows for a same-value update; an inactive or missing
// book surfaces as sql.ErrNoRows from the re-read.
func (r *BookRepo) Update(ctx context.Context, id uint64, b model.Book) (model.Book, error) {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE books SET title=?, summary=?, price=?, page_count=?, author_name=?, category_id=?, book_img=? WHERE id=? AND is_active=1 AND is_deleted=0",
		b.Title, b.Summary, b.Price, b.PageCount, b.AuthorName, b.CategoryID, b.BookImg, id)
	if err != nil {
		if isDuplicateKey(err) {
			return model.Book{}, ErrDuplicate
		}
		return model.Book{}, err
	}
	return r.GetActiveByID(ctx, id)
}

// GetActiveByID fetches an active book by id.
func (r *BookRepo) GetActiveByID(ctx context.Context, id uint64) (model.Book, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+bookCols+" FROM books WHERE id=? AND is_active=1 AND is_deleted=0 LIMIT 1", id)
	return scanBook(row)
}

// ListActive returns all active books.
func (r *BookRepo) ListActive(ctx context.Context) ([]model.Book, error) {
	return r.list(ctx,
		"SELECT "+bookCols+" FROM books WHERE is_active=1 AND is_deleted=0 ORDER BY created_at")
}

// ListRecent returns the newest active books, capped at limit.
func (r *BookRepo) ListRecent(ctx context.Context, limit int) ([]model.Book, error) {
	return r.list(ctx,
		"SELECT "+bookCols+" FROM books WHERE is_active=1 AND is_deleted=0 ORDER BY created_at DESC LIMIT ?",
		limit)
}

// ListActiveByUser returns the active books added by a user.
func (r *BookRepo) ListActiveByUser(ctx context.Context, userID uint64) ([]model.Book, error) {
	return r.list(ctx,
		"SELECT "+bookCols+" FROM books WHERE insertion_user_id=? AND is_active=1 AND is_deleted=0 ORDER BY created_at DESC",
		userID)
}

// ListActiveByCategory returns the active books in a category.
func (r *BookRepo) ListActiveByCategory(ctx context.Context, categoryID uint64) ([]model.Book, error) {
	return r.list(ctx,
		"SELECT "+bookCols+" FROM books WHERE category_id=? AND is_active=1 AND is_deleted=0 ORDER BY created_at DESC",
		categoryID)
}

func (r *BookRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Book, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Book
	for rows.Next() {
		var b model.Book
		var summary sql.NullString
		if err := rows.Scan(&b.ID, &b.Title, &summary, &b.Price, &b.PageCount,
			&b.AuthorName, &b.InsertionUserID, &b.CategoryID, &b.BookImg,
			&b.Status, &b.IsActive, &b.IsDeleted, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		if summary.Valid {
			v := summary.String
			b.Summary = &v
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// SoftDelete marks a book removed. Its ratings and reviews keep their
// own lifecycle state and simply stop being reachable through book
// reads.
func (r *BookRepo) SoftDelete(ctx context.Context, id uint64) error {
	return softDelete(ctx, r.DB, "books", id)
}

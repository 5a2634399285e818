package repository

import (
	"context"
	"database/sql"

	"github.com/AmitSaha9928/book-stack/internal/model"
)

const categoryCols = "id,name,code,status,is_active,is_deleted,created_at,updated_at"

type CategoryRepo struct{ DB *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{DB: db} }

func scanCategory(row *sql.Row) (model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.Name, &c.Code,
		&c.Status, &c.IsActive, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// NameExists checks the name against non-deleted categories only, so a
// removed category's name can be reused.
func (r *CategoryRepo) NameExists(ctx context.Context, name string) (bool, error) {
	var id uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM categories WHERE name=? AND is_deleted=0 LIMIT 1", name).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create inserts a category and returns its ID.
func (r *CategoryRepo) Create(ctx context.Context, name, code string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO categories (name, code) VALUES (?,?)", name, code)
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

// GetActiveByID fetches an active category by id.
func (r *CategoryRepo) GetActiveByID(ctx context.Context, id uint64) (model.Category, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+categoryCols+" FROM categories WHERE id=? AND is_active=1 AND is_deleted=0 LIMIT 1", id)
	return scanCategory(row)
}

// ListActive returns all active categories ordered by name.
func (r *CategoryRepo) ListActive(ctx context.Context) ([]model.Category, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+categoryCols+" FROM categories WHERE is_active=1 AND is_deleted=0 ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Code,
			&c.Status, &c.IsActive, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update renames an active category. Returns sql.ErrNoRows when the
// category is missing or no longer active.
func (r *CategoryRepo) Update(ctx context.Context, id uint64, name, code string) (model.Category, error) {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE categories SET name=?, code=? WHERE id=? AND is_active=1 AND is_deleted=0",
		name, code, id)
	if err != nil {
		if isDuplicateKey(err) {
			return model.Category{}, ErrDuplicate
		}
		return model.Category{}, err
	}
	// MySQL reports zero affected rows for a same-value update, so a
	// follow-up read both returns the record and confirms it is still
	// active.
	return r.GetActiveByID(ctx, id)
}

// SoftDelete marks a category removed. Books keep their category_id
// reference; resolving it afterwards simply finds nothing active.
func (r *CategoryRepo) SoftDelete(ctx context.Context, id uint64) error {
	return softDelete(ctx, r.DB, "categories", id)
}

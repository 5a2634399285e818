package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/AmitSaha9928/book-stack/internal/model"
	"github.com/AmitSaha9928/book-stack/internal/utils"
)

const userCols = "id,first_name,last_name,username,email,phone_number,role,password_hash,user_img,status,is_active,is_deleted,created_at,updated_at"

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var img sql.NullString
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.Email,
		&u.PhoneNumber, &u.Role, &u.PasswordHash, &img,
		&u.Status, &u.IsActive, &u.IsDeleted, &u.CreatedAt, &u.UpdatedAt)
	if img.Valid {
		v := img.String
		u.UserImg = &v
	}
	return u, err
}

// Create hashes the password and inserts the user with default lifecycle
// flags, returning the generated ID. Exactly one row is written.
func (r *UserRepo) Create(ctx context.Context, u model.User, password string, cost int) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (first_name,last_name,username,email,phone_number,role,password_hash,user_img) VALUES (?,?,?,?,?,?,?,?)",
		u.FirstName, u.LastName, u.Username, strings.ToLower(strings.TrimSpace(u.Email)),
		u.PhoneNumber, u.Role, hash, u.UserImg)
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

// FindByEmailOrUsername returns any non-deleted user sharing the email
// or the username. Used by registration to detect an existing account;
// deleted users do not block re-registration.
func (r *UserRepo) FindByEmailOrUsername(ctx context.Context, email, username string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE (email=? OR username=?) AND is_deleted=0 LIMIT 1",
		email, username)
	return scanUser(row)
}

// GetActiveByEmail fetches an active user by normalized email.
func (r *UserRepo) GetActiveByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? AND is_active=1 AND is_deleted=0 LIMIT 1",
		email)
	return scanUser(row)
}

// GetActiveByID fetches an active user by id.
func (r *UserRepo) GetActiveByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? AND is_active=1 AND is_deleted=0 LIMIT 1", id)
	return scanUser(row)
}

// ListActive returns all active users ordered by creation time.
func (r *UserRepo) ListActive(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userCols+" FROM users WHERE is_active=1 AND is_deleted=0 ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		var u model.User
		var img sql.NullString
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.Email,
			&u.PhoneNumber, &u.Role, &u.PasswordHash, &img,
			&u.Status, &u.IsActive, &u.IsDeleted, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		if img.Valid {
			v := img.String
			u.UserImg = &v
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// SoftDelete flips the lifecycle flags on an active user. The row stays
// in the table; future reads skip it. A second delete of the same user
// reports ErrAlreadyRemoved.
func (r *UserRepo) SoftDelete(ctx context.Context, id uint64) error {
	return softDelete(ctx, r.DB, "users", id)
}

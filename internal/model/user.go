package model

import "time"

// Role names stored in users.role and carried in the JWT "role" claim.
const (
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

// User represents an application user record as stored in the `users`
// table. Each field corresponds to a column. The password is stored only
// as a bcrypt digest; handlers define separate response types that omit
// it entirely.
//
// Fields:
//  ID           – primary key identifier of the user.
//  FirstName    – given name.
//  LastName     – family name.
//  Username     – unique handle among non-deleted users.
//  Email        – unique email among non-deleted users.
//  PhoneNumber  – contact number.
//  Role         – ADMIN or MEMBER.
//  PasswordHash – bcrypt hashed password.
//  UserImg      – optional avatar reference (plain path, storage is external).
//  Lifecycle    – shared soft-delete flags.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64  // users.id
	FirstName    string  // users.first_name
	LastName     string  // users.last_name
	Username     string  // users.username
	Email        string  // users.email
	PhoneNumber  string  // users.phone_number
	Role         string  // users.role
	PasswordHash string  // users.password_hash
	UserImg      *string // users.user_img (nullable)
	Lifecycle            // users.status / is_active / is_deleted
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

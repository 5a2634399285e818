package model

import "time"

// Book mirrors the `books` table. A book belongs to a category and
// records the user who inserted it. The cover image is a plain path
// reference; file storage lives outside this service.
//
// Fields:
//  ID              – primary key identifier.
//  Title           – book title, unique across all books (soft-deleted included).
//  Summary         – optional free-text summary.
//  Price           – list price.
//  PageCount       – number of pages.
//  AuthorName      – author of the book (not an application user).
//  InsertionUserID – user who created the record.
//  CategoryID      – owning category.
//  BookImg         – cover image reference.
//  Lifecycle       – shared soft-delete flags.
type Book struct {
	ID              uint64  // books.id
	Title           string  // books.title
	Summary         *string // books.summary (nullable)
	Price           float64 // books.price
	PageCount       uint32  // books.page_count
	AuthorName      string  // books.author_name
	InsertionUserID uint64  // books.insertion_user_id
	CategoryID      uint64  // books.category_id
	BookImg         string  // books.book_img
	Lifecycle               // books.status / is_active / is_deleted
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

package model

// Lifecycle carries the soft-delete flags shared by every entity in the
// catalog. Nothing is ever physically removed: a delete flips the flags
// and every read filters on them afterwards.
//
// Fields:
//  Status    – legacy status bit, mirrors is_active on current data.
//  IsActive  – record is visible to user-facing reads.
//  IsDeleted – record has been soft-deleted and is excluded from all reads.
type Lifecycle struct {
	Status    bool // <table>.status
	IsActive  bool // <table>.is_active
	IsDeleted bool // <table>.is_deleted
}

// NewLifecycle returns the flags every freshly created record starts with.
func NewLifecycle() Lifecycle {
	return Lifecycle{Status: true, IsActive: true, IsDeleted: false}
}

// Removed reports whether the record has been soft-deleted.
func (l Lifecycle) Removed() bool { return l.IsDeleted }

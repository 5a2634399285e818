// Package queue defines message payloads exchanged over the message broker.
package queue

// Activity event kinds.
const (
	ActivityRating = "rating"
	ActivityReview = "review"
)

// ActivityEvent is published when a rating or review submission
// succeeds. It carries enough for downstream consumers to log or feed
// analytics without querying the primary database.
type ActivityEvent struct {
	Kind       string `json:"kind"` // rating | review
	EntityID   uint64 `json:"entity_id"`
	UserID     uint64 `json:"user_id"`
	BookID     uint64 `json:"book_id"`
	Value      string `json:"value"`   // score or review body
	Created    bool   `json:"created"` // false means an in-place update
	OccurredAt string `json:"occurred_at"`
}

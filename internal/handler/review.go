package handler

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/AmitSaha9928/book-stack/internal/queue"
	"github.com/AmitSaha9928/book-stack/internal/repository"
)

// ReviewHandler bundles dependencies for review endpoints.
type ReviewHandler struct {
	Users   *repository.UserRepo
	Books   *repository.BookRepo
	Reviews *repository.ReviewRepo
}

func NewReviewHandler(u *repository.UserRepo, b *repository.BookRepo, r *repository.ReviewRepo) *ReviewHandler {
	return &ReviewHandler{Users: u, Books: b, Reviews: r}
}

type submitReviewReq struct {
	BookID uint64 `json:"bookId"`
	Review string `json:"review"`
}

type updateReviewReq struct {
	Review string `json:"review"`
}

// Submit records the authenticated user's review of a book: a first
// submission creates it (201), a resubmission rewrites the body of the
// existing review in place (200). Ratings are a separate record; either
// can exist without the other.
func (h *ReviewHandler) Submit(c echo.Context) error {
	uid, err := authedUserID(c)
	if err != nil {
		return respond(c, http.StatusUnauthorized, true, "unauthorized", nil)
	}
	var req submitReviewReq
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, true, "invalid body", nil)
	}
	req.Review = strings.TrimSpace(req.Review)
	if missing := firstMissing([]field{
		{"bookId", req.BookID == 0},
		{"review", req.Review == ""},
	}); missing != "" {
		return respond(c, http.StatusUnprocessableEntity, true, missing+" is missing", nil)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Users.GetActiveByID(ctx, uid); err != nil {
		if err == sql.ErrNoRows {
			return respond(c, http.StatusNotFound, true, "user doesn't exist", nil)
		}
		return respond(c, http.StatusInternalServerError, true, "user lookup failed", nil)
	}
	if _, err := h.Books.GetActiveByID(ctx, req.BookID); err != nil {
		if err == sql.ErrNoRows {
			return respond(c, http.StatusNotFound, true, "book doesn't exist", nil)
		}
		return respond(c, http.StatusInternalServerError, true, "book lookup failed", nil)
	}

	review, created, err := h.Reviews.Submit(ctx, uid, req.BookID, req.Review)
	if err != nil {
		return respond(c, http.StatusInternalServerError, true, "submit review failed", nil)
	}

	publishActivity(queue.ActivityEvent{
		Kind:       queue.ActivityReview,
		EntityID:   review.ID,
		UserID:     uid,
		BookID:     req.BookID,
		Value:      req.Review,
		Created:    created,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})

	if created {
		return respond(c, http.StatusCreated, false, "review created", review)
	}
	return respond(c, http.StatusOK, false, "review updated", review)
}

// GetAll returns every non-deleted review.
func (h *ReviewHandler) GetAll(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	reviews, err := h.Reviews.ListAll(ctx)
	if err != nil {
		return respond(c, http.StatusInternalServerError, true, "query failed", nil)
	}
	return respond(c, http.StatusOK, false, "all reviews", reviews)
}

// GetByBook returns the active reviews of a book.
func (h *ReviewHandler) GetByBook(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return respond(c, http.StatusBadRequest, true, "invalid id", nil)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	reviews, err := h.Reviews.ListActiveByBook(ctx, id)
	if err != nil {
		return respond(c, http.StatusInternalServerError, true, "query failed", nil)
	}
	return respond(c, http.StatusOK, false, "reviews by book", reviews)
}

// GetByUser returns the active reviews written by a user.
func (h *ReviewHandler) GetByUser(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return respond(c, http.StatusBadRequest, true, "invalid id", nil)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	reviews, err := h.Reviews.ListActiveByUser(ctx, id)
	if err != nil {
		return respond(c, http.StatusInternalServerError, true, "query failed", nil)
	}
	return respond(c, http.StatusOK, false, "reviews by user", reviews)
}

// Update rewrites the body of a review addressed by id. Only the author
// or an admin may edit it.
func (h *ReviewHandler) Update(c echo.Context) error {
	uid, err := authedUserID(c)
	if err != nil {
		return respond(c, http.StatusUnauthorized, true, "unauthorized", nil)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return respond(c, http.StatusBadRequest, true, "invalid id", nil)
	}
	var req updateReviewReq
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, true, "invalid body", nil)
	}
	req.Review = strings.TrimSpace(req.Review)
	if req.Review == "" {
		return respond(c, http.StatusUnprocessableEntity, true, "review is missing", nil)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	review, err := h.Reviews.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return respond(c, http.StatusNotFound, true, "review not found", nil)
		}
		return respond(c, http.StatusInternalServerError, true, "query failed", nil)
	}
	if review.UserID != uid && !isAdmin(c) {
		return respond(c, http.StatusForbidden, true, "forbidden", nil)
	}

	updated, err := h.Reviews.UpdateBodyByID(ctx, id, req.Review)
	if err != nil {
		if err == sql.ErrNoRows {
			return respond(c, http.StatusNotFound, true, "review not found", nil)
		}
		return respond(c, http.StatusInternalServerError, true, "update failed", nil)
	}
	return respond(c, http.StatusOK, false, "review updated", updated)
}

// Remove soft-deletes a review. Only the author or an admin may remove
// it; removing one that is already gone reports the idempotent
// already-removed outcome.
func (h *ReviewHandler) Remove(c echo.Context) error {
	uid, err := authedUserID(c)
	if err != nil {
		return respond(c, http.StatusUnauthorized, true, "unauthorized", nil)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return respond(c, http.StatusBadRequest, true, "invalid id", nil)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	review, err := h.Reviews.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return respond(c, http.StatusNotFound, true, "review not found", nil)
		}
		return respond(c, http.StatusInternalServerError, true, "query failed", nil)
	}
	if review.UserID != uid && !isAdmin(c) {
		return respond(c, http.StatusForbidden, true, "forbidden", nil)
	}

	switch err := h.Reviews.SoftDelete(ctx, id); err {
	case nil:
		removed, err := h.Reviews.GetByID(ctx, id)
		if err != nil {
			return respond(c, http.StatusInternalServerError, true, "load review failed", nil)
		}
		return respond(c, http.StatusOK, false, "review deleted successfully", removed)
	case repository.ErrAlreadyRemoved:
		return respond(c, http.StatusConflict, false, "review already removed", nil)
	case sql.ErrNoRows:
		return respond(c, http.StatusNotFound, true, "review not found", nil)
	default:
		return respond(c, http.StatusInternalServerError, true, "delete failed", nil)
	}
}

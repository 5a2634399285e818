package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/AmitSaha9928/book-stack/internal/config"
	"github.com/AmitSaha9928/book-stack/internal/middleware"
	"github.com/AmitSaha9928/book-stack/internal/queue"
	"github.com/AmitSaha9928/book-stack/internal/repository"
	queuepublisher "github.com/AmitSaha9928/book-stack/internal/service"
)

// RatingHandler bundles dependencies for rating endpoints.
type RatingHandler struct {
	Users    *repository.UserRepo
	Books    *repository.BookRepo
	Ratings  *repository.RatingRepo
	CacheCfg config.CacheConfig
	Rdb      *redis.Client
}

func NewRatingHandler(u *repository.UserRepo, b *repository.BookRepo, r *repository.RatingRepo,
	cacheCfg config.CacheConfig, rdb *redis.Client) *RatingHandler {
	return &RatingHandler{Users: u, Books: b, Ratings: r, CacheCfg: cacheCfg, Rdb: rdb}
}

type submitRatingReq struct {
	BookID uint64  `json:"bookId"`
	Score  float64 `json:"score"`
}

// Submit records the authenticated user's score for a book. The score
// arrives as a number, is validated here, and only becomes text at the
// storage boundary (the legacy column is VARCHAR). A first submission
// creates the rating and returns 201; resubmitting the same pair
// updates the existing row in place and returns 200, never a second
// active row.
func (h *RatingHandler) Submit(c echo.Context) error {
	uid, err := authedUserID(c)
	if err != nil {
		return respond(c, http.StatusUnauthorized, true, "unauthorized", nil)
	}
	var req submitRatingReq
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, true, "invalid body", nil)
	}
	if missing := firstMissing([]field{
		{"bookId", req.BookID == 0},
		{"score", req.Score == 0},
	}); missing != "" {
		return respond(c, http.StatusUnprocessableEntity, true, missing+" is missing", nil)
	}
	if req.Score < 0 {
		return respond(c, http.StatusUnprocessableEntity, true, "score must be positive", nil)
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

	score := strconv.FormatFloat(req.Score, 'f', -1, 64)
	rating, created, err := h.Ratings.Submit(ctx, uid, req.BookID, score)
	if err != nil {
		return respond(c, http.StatusInternalServerError, true, "submit rating failed", nil)
	}

	middleware.InvalidateAggregate(c, h.CacheCfg, h.Rdb, strconv.FormatUint(req.BookID, 10))
	publishActivity(queue.ActivityEvent{
		Kind:       queue.ActivityRating,
		EntityID:   rating.ID,
		UserID:     uid,
		BookID:     req.BookID,
		Value:      score,
		Created:    created,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})

	if created {
		return respond(c, http.StatusCreated, false, "rating created", rating)
	}
	return respond(c, http.StatusOK, false, "rating updated", rating)
}

// GetAll returns every active rating.
func (h *RatingHandler) GetAll(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	ratings, err := h.Ratings.ListActive(ctx)
	if err != nil {
		return respond(c, http.StatusInternalServerError, true, "query failed", nil)
	}
	return respond(c, http.StatusOK, false, "list of all the ratings", ratings)
}

// GetByUser returns the active ratings submitted by a user.
func (h *RatingHandler) GetByUser(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return respond(c, http.StatusBadRequest, true, "invalid id", nil)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	ratings, err := h.Ratings.ListActiveByUser(ctx, id)
	if err != nil {
		return respond(c, http.StatusInternalServerError, true, "query failed", nil)
	}
	return respond(c, http.StatusOK, false, "ratings by user", ratings)
}

// GetByBook returns the active ratings given to a book.
func (h *RatingHandler) GetByBook(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return respond(c, http.StatusBadRequest, true, "invalid id", nil)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	ratings, err := h.Ratings.ListActiveByBook(ctx, id)
	if err != nil {
		return respond(c, http.StatusInternalServerError, true, "query failed", nil)
	}
	return respond(c, http.StatusOK, false, "ratings by book", ratings)
}

// Average returns the derived aggregate for a book. A book nobody has
// rated yields {average:0, count:0} with a 200; the empty state is a
// defined result, not an error. The route is wrapped by the Redis
// aggregate cache; this handler only ever computes from the table.
func (h *RatingHandler) Average(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return respond(c, http.StatusBadRequest, true, "invalid id", nil)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	agg, err := h.Ratings.AverageForBook(ctx, id)
	if err != nil {
		return respond(c, http.StatusInternalServerError, true, "aggregate failed", nil)
	}
	return respond(c, http.StatusOK, false, "book average rating", agg)
}

// Remove soft-deletes a rating. Only the author or an admin may remove
// it. Removing an already-removed rating is a no-op reported as a 409
// with the error flag false.
func (h *RatingHandler) Remove(c echo.Context) error {
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

	rating, err := h.Ratings.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return respond(c, http.StatusNotFound, true, "rating not found", nil)
		}
		return respond(c, http.StatusInternalServerError, true, "query failed", nil)
	}
	if rating.UserID != uid && !isAdmin(c) {
		return respond(c, http.StatusForbidden, true, "forbidden", nil)
	}

	switch err := h.Ratings.SoftDelete(ctx, id); err {
	case nil:
		middleware.InvalidateAggregate(c, h.CacheCfg, h.Rdb, strconv.FormatUint(rating.BookID, 10))
		removed, err := h.Ratings.GetByID(ctx, id)
		if err != nil {
			return respond(c, http.StatusInternalServerError, true, "load rating failed", nil)
		}
		return respond(c, http.StatusOK, false, "rating deleted successfully", removed)
	case repository.ErrAlreadyRemoved:
		return respond(c, http.StatusConflict, false, "rating already removed", nil)
	case sql.ErrNoRows:
		return respond(c, http.StatusNotFound, true, "rating not found", nil)
	default:
		return respond(c, http.StatusInternalServerError, true, "delete failed", nil)
	}
}

// publishActivity hands the event to the queue publisher without
// blocking the response. Publish failures are logged by the publisher
// and deliberately dropped here.
func publishActivity(ev queue.ActivityEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), reqTimeout)
		defer cancel()
		_ = queuepublisher.PublishActivity(ctx, ev)
	}()
}

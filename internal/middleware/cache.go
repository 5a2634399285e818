package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/AmitSaha9928/book-stack/internal/config"
)

// AggregateCache caches the JSON body of the per-book average-rating
// endpoint in Redis, keyed by the book id path parameter. The aggregate
// is re-derived from the ratings table on a miss, so the TTL is the
// only staleness a reader can observe. Only 200 responses are stored;
// with caching disabled or Redis down the middleware passes requests
// straight through.
func AggregateCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			key := cfg.Prefix + ":" + c.Param("id")
			ctx := c.Request().Context()

			if body, err := rdb.Get(ctx, key).Bytes(); err == nil {
				return c.JSONBlob(http.StatusOK, body)
			}

			rec := &bodyRecorder{ResponseWriter: c.Response().Writer}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				return err
			}
			if rec.status == http.StatusOK && len(rec.body) > 0 {
				// Best effort; a failed SET only costs the next reader
				// a recomputation.
				_ = rdb.Set(ctx, key, rec.body, cfg.TTL).Err()
			}
			return nil
		}
	}
}

// bodyRecorder captures the response body and status while forwarding
// everything to the client.
type bodyRecorder struct {
	http.ResponseWriter
	status int
	body   []byte
}

func (r *bodyRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body = append(r.body, b...)
	return r.ResponseWriter.Write(b)
}

// InvalidateAggregate drops the cached aggregate for a book. Called by
// handlers after a rating write so readers do not wait out the TTL to
// see their own submission.
func InvalidateAggregate(c echo.Context, cfg config.CacheConfig, rdb *redis.Client, bookID string) {
	if !cfg.Enabled || rdb == nil {
		return
	}
	_ = rdb.Del(c.Request().Context(), cfg.Prefix+":"+bookID).Err()
}

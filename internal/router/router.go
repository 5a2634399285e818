// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/AmitSaha9928/book-stack/internal/config"
	"github.com/AmitSaha9928/book-stack/internal/handler"
	"github.com/AmitSaha9928/book-stack/internal/middleware"
	"github.com/AmitSaha9928/book-stack/internal/model"
)

// Handlers collects every handler the router needs. main constructs the
// set once and hands it over.
type Handlers struct {
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	Books      *handler.BookHandler
	Categories *handler.CategoryHandler
	Ratings    *handler.RatingHandler
	Reviews    *handler.ReviewHandler
}

// RegisterRoutes wires all endpoints onto the Echo instance.
//
// Three tiers: unauthenticated browse reads and signup/login, a
// protected tier for any authenticated member (rate, review, add
// books), and an admin tier for user and category management. The
// per-book average route additionally sits behind the Redis aggregate
// cache, and mutating routes behind the token-bucket limiter.
func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers, rdb *redis.Client) {
	rl := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)
	cacheCfg := config.LoadCacheConfig()

	// Liveness probe for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	// Signup and login create or exchange credentials, so they are the
	// one mutating surface outside the JWT gate. Both are rate limited.
	auth := e.Group("/v1/auth", rl)
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)

	// Public browse endpoints: sanitized catalog reads for guests.
	e.GET("/v1/books", h.Books.GetAll)
	e.GET("/v1/books/recent", h.Books.GetRecent)
	e.GET("/v1/books/:id", h.Books.GetByID)
	e.GET("/v1/books/user/:id", h.Books.GetByUser)
	e.GET("/v1/categories", h.Categories.GetAll)
	e.GET("/v1/categories/:id", h.Categories.GetByID)
	e.GET("/v1/categories/:id/books", h.Books.GetByCategory)
	e.GET("/v1/ratings", h.Ratings.GetAll)
	e.GET("/v1/ratings/book/:id", h.Ratings.GetByBook)
	e.GET("/v1/ratings/user/:id", h.Ratings.GetByUser)
	e.GET("/v1/ratings/book/:id/average", h.Ratings.Average,
		middleware.AggregateCache(cacheCfg, rdb))
	e.GET("/v1/reviews", h.Reviews.GetAll)
	e.GET("/v1/reviews/book/:id", h.Reviews.GetByBook)
	e.GET("/v1/reviews/user/:id", h.Reviews.GetByUser)

	// Authenticated tier: any active member may submit content.
	member := e.Group("/v1")
	member.Use(middleware.JWTAuth(cfg.JWTSecret))
	member.Use(middleware.RequireRole(model.RoleAdmin, model.RoleMember))
	member.Use(rl)
	member.GET("/me", h.Auth.Me)
	member.POST("/ratings", h.Ratings.Submit)
	member.DELETE("/ratings/:id", h.Ratings.Remove)
	member.POST("/reviews", h.Reviews.Submit)
	member.PUT("/reviews/:id", h.Reviews.Update)
	member.DELETE("/reviews/:id", h.Reviews.Remove)
	member.POST("/books", h.Books.Create)
	member.PUT("/books/:id", h.Books.Update)

	// Admin tier: user management and catalog taxonomy.
	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(cfg.JWTSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.Use(rl)
	admin.GET("/users", h.Users.GetAll)
	admin.GET("/users/:id", h.Users.GetByID)
	admin.DELETE("/users/:id", h.Users.Remove)
	admin.POST("/categories", h.Categories.Create)
	admin.PUT("/categories/:id", h.Categories.Update)
	admin.DELETE("/categories/:id", h.Categories.Remove)
	admin.DELETE("/books/:id", h.Books.Remove)
}

package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/AmitSaha9928/book-stack/internal/config"
	"github.com/AmitSaha9928/book-stack/internal/database"
	"github.com/AmitSaha9928/book-stack/internal/handler"
	"github.com/AmitSaha9928/book-stack/internal/queue"
	"github.com/AmitSaha9928/book-stack/internal/repository"
	"github.com/AmitSaha9928/book-stack/internal/router"
)

func main() {
	// A .env file is a dev convenience; in prod the variables come
	// from the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Optional subsystems degrade to no-ops when unavailable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Print("redis unavailable; caching and rate limiting disabled")
	}

	go func() {
		if err := queue.StartActivityConsumer(); err != nil {
			log.Printf("activity consumer stopped: %v", err)
		}
	}()

	users := repository.NewUserRepo(db)
	books := repository.NewBookRepo(db)
	categories := repository.NewCategoryRepo(db)
	ratings := repository.NewRatingRepo(db)
	reviews := repository.NewReviewRepo(db)

	cacheCfg := config.LoadCacheConfig()
	h := router.Handlers{
		Auth:       handler.NewAuthHandler(cfg, users),
		Users:      handler.NewUserHandler(users),
		Books:      handler.NewBookHandler(books, categories),
		Categories: handler.NewCategoryHandler(categories),
		Ratings:    handler.NewRatingHandler(users, books, ratings, cacheCfg, rdb),
		Reviews:    handler.NewReviewHandler(users, books, reviews),
	}

	e := echo.New()
	router.RegisterRoutes(e, cfg, h, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

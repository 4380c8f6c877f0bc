package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/jwozniak/car-workshop/internal/config"
	"github.com/jwozniak/car-workshop/internal/database"
	"github.com/jwozniak/car-workshop/internal/handler"
	"github.com/jwozniak/car-workshop/internal/queue"
	"github.com/jwozniak/car-workshop/internal/repository"
	"github.com/jwozniak/car-workshop/internal/router"
	queue_publisher "github.com/jwozniak/car-workshop/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	if err := database.Migrate(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}

	go func() {
		if err := queue.StartEventsConsumer(); err != nil {
			log.Printf("events consumer stopped: %v", err)
		}
	}()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	cars := repository.NewCarRepo(db)
	workshops := repository.NewWorkshopRepo(db)
	events := queue_publisher.Publisher{}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{cfg.CORSOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
	}))

	router.Register(e, router.Deps{
		Cfg:       cfg,
		Auth:      handler.NewAuthHandler(cfg, users, tokens, events),
		Cars:      handler.NewCarHandler(cars, events),
		Workshops: handler.NewWorkshopHandler(workshops),
		Redis:     rdb,
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

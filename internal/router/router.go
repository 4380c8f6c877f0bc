// Package router wires the HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/jwozniak/car-workshop/internal/config"
	"github.com/jwozniak/car-workshop/internal/handler"
	"github.com/jwozniak/car-workshop/internal/middleware"
)

// Deps carries everything route registration needs.
type Deps struct {
	Cfg       config.Config
	Auth      *handler.AuthHandler
	Cars      *handler.CarHandler
	Workshops *handler.WorkshopHandler
	Redis     *redis.Client // nil disables cache and rate limiting
}

// Register sets up the full route table. The API lives under /api; the
// health check stays at the root for load balancers.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	api := e.Group("/api")

	guard := middleware.JWTAuth(d.Cfg.JWTSecret)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), d.Redis)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.Redis)

	// Auth: register/login/refresh are open but rate limited; profile and
	// address require a bearer token.
	auth := api.Group("/auth")
	auth.POST("/register", d.Auth.Register, limiter)
	auth.POST("/login", d.Auth.Login, limiter)
	auth.POST("/refresh", d.Auth.Refresh, limiter)
	auth.GET("/user", d.Auth.GetUser, guard)
	auth.PUT("/user", d.Auth.UpdateUser, guard)
	auth.GET("/user/address", d.Auth.GetAddress, guard)
	auth.PUT("/user/address", d.Auth.UpdateAddress, guard)

	// Cars: mutations and the owner's list are protected; brand/model
	// reference data is public and cached.
	cars := api.Group("/cars")
	cars.POST("", d.Cars.Add, guard)
	cars.PUT("", d.Cars.Update, guard)
	cars.GET("", d.Cars.List, guard)
	cars.DELETE("/:id", d.Cars.Delete, guard)
	cars.GET("/brands", d.Cars.Brands, cache)
	cars.GET("/models/:brand_id", d.Cars.Models, cache)

	// Workshops: public read-only directory, cached.
	api.GET("/workshops", d.Workshops.List, cache)
}

// Package httpapi: JSON API бронирования поверх gin.
package httpapi

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Leganyst/temple-booking/internal/obs"
)

type Deps struct {
	Env            string
	AllowedOrigins []string
	Logger         *slog.Logger

	Bookings *BookingHandler
	Basket   *BasketHandler
	Health   Health

	// RequireUser: middleware аутентификации; все маршруты, кроме
	// слотов и health, идут через него.
	RequireUser gin.HandlerFunc
}

func NewRouter(d Deps) *gin.Engine {
	configureGinMode(d.Env)

	mw := obs.Middleware{Logger: d.Logger, SkipPaths: []string{"/livez", "/readyz"}}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(mw.RequestID())
	router.Use(mw.AccessLog())
	router.Use(cors.New(corsConfig(d.AllowedOrigins)))

	router.GET("/livez", d.Health.Livez)
	router.GET("/readyz", d.Health.Readyz)

	public := router.Group("/bookings")
	public.GET("/available-slots/:templeId/:date", d.Bookings.AvailableSlots)

	authed := router.Group("/bookings")
	if d.RequireUser != nil {
		authed.Use(d.RequireUser)
	}
	authed.POST("", d.Bookings.Create)
	authed.GET("/my-bookings", d.Bookings.ListMine)
	authed.GET("/stats", d.Bookings.Stats)
	authed.GET("/:id", d.Bookings.Get)
	authed.PUT("/:id/status", d.Bookings.UpdateStatus)

	basket := authed.Group("/basket")
	basket.POST("/add", d.Basket.Add)
	basket.GET("", d.Basket.List)
	basket.DELETE("", d.Basket.Clear)
	basket.POST("/checkout", d.Basket.CheckoutBasket)
	basket.PUT("/:id", d.Basket.Update)
	basket.DELETE("/:id", d.Basket.Remove)

	return router
}

func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", obs.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func configureGinMode(env string) {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "debug":
		gin.SetMode(gin.DebugMode)
	case "test", "testing":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}
}

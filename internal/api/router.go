package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"filament-station/config"
	"filament-station/internal/mw"
	"filament-station/internal/station"
	"filament-station/internal/store"
)

// NewRouter creates and configures a new Gin router for the kiosk API.
func NewRouter(cfg *config.Config, s store.Store, st *station.Station, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(cfg, s, st, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), 5)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 10*time.Minute)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Kiosk front-end polls /api/status; it is never cached.
		api.GET("/status", handler.GetStatus)

		api.GET("/spools", caching, handler.GetSpools)
		api.GET("/spools/:spool_id/logs", handler.GetSpoolLogs)
		api.GET("/locations", caching, handler.GetLocations)

		api.POST("/actions/scan", handler.PostScan)
		api.POST("/actions/weigh", handler.PostWeigh)
		api.POST("/actions/move", handler.PostMove)
		api.POST("/actions/open", handler.PostOpen)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}

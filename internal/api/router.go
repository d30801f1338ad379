package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"collection-status-backend/config"
	"collection-status-backend/internal/mw"
	"collection-status-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, up Upstream, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, up, webpushOptions, cfg.Sync.Grace, cfg.Sync.Location())

	rateLimit := cfg.Server.RateLimitPerSec
	if rateLimit <= 0 {
		rateLimit = 10
	}
	rateLimiter := mw.RateLimiter(rate.Limit(rateLimit), 5, cfg.Server.RequestIPHeader)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)

		authed := api.Group("")
		authed.Use(mw.Auth(cfg.Server.JWTSecret))
		{
			// The hotel list is user-independent, so it may be cached; the
			// schedule views are classified against the clock per request.
			authed.GET("/hotels", caching, handler.GetHotels)
			authed.GET("/hotels/:hotel_id/schedules", handler.GetHotelSchedules)
			authed.GET("/schedules", handler.GetSchedules)

			authed.GET("/messages/threads", handler.GetMessageThreads)

			authed.GET("/subscriptions", handler.GetSubscription)
			authed.PUT("/subscriptions", handler.PutSubscription)
			authed.DELETE("/subscriptions", handler.DeleteSubscription)

			staff := authed.Group("")
			staff.Use(mw.RequireRole(mw.RoleAdmin, mw.RoleStaff))
			{
				staff.POST("/schedules/:schedule_id/complete", handler.CompleteSchedule)
				staff.POST("/hotels/:hotel_id/apology", handler.SendApology)
			}
		}
	}

	return r
}

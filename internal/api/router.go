package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"apartment-tracker-backend/config"
	"apartment-tracker-backend/internal/mw"
	"apartment-tracker-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, webpushOptions *webpush.Options, scraper Trigger, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(mw.Logger(logger), gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))

	secureConfig := secure.Config{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}
	if cfg.Server.SSL {
		secureConfig.SSLRedirect = true
		secureConfig.STSSeconds = 31536000
		secureConfig.STSIncludeSubdomains = true
	}
	r.Use(secure.New(secureConfig))

	handler := NewHandler(s, webpushOptions, scraper, logger)
	handler.logLimit = cfg.Server.ScrapeLogLimit

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	ttl := cfg.Server.CacheTTL()
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl)
	if scraper != nil {
		scraper.OnCycle(cacheStore.Flush)
	}

	api := r.Group("/api")
	api.Use(rateLimiter, mw.FlushOnWrite(cacheStore))
	{
		api.GET("/apartments", caching, handler.ListApartments)
		api.GET("/apartments/:id", handler.GetApartment)
		api.GET("/apartments/:id/images", handler.GetApartmentImages)
		api.GET("/apartments/:id/price-history", handler.GetPriceHistory)

		api.GET("/floor-plans", caching, handler.ListFloorPlans)
		api.GET("/floor-plans/:id", handler.GetFloorPlan)

		api.GET("/saved", handler.ListSaved)
		api.POST("/saved", handler.SaveApartment)
		api.DELETE("/saved/:apartment_id", handler.DeleteSaved)
		api.PATCH("/saved/:apartment_id", handler.UpdateSaved)

		api.GET("/stats", caching, handler.GetStats)
		api.GET("/stats/price-trends", caching, handler.GetPriceTrends)

		api.GET("/scrape/logs", handler.ListScrapeLogs)
		api.POST("/scrape/trigger", handler.TriggerScrape)

		api.POST("/import", mw.RequireToken(cfg.Import.Token), handler.Import)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Cache-Control", mw.ImportTokenHeader},
		ExposeHeaders: []string{mw.CacheHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}

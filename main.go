package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cms-site/pkg/blocks"
	"cms-site/pkg/config"
	"cms-site/pkg/handlers"
	"cms-site/pkg/logging"
	"cms-site/pkg/personalize"
	"cms-site/pkg/services"
	"cms-site/pkg/views"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize config
	config.Init()
	logging.SetupLogger(config.LogLevel, config.Production)
	if err := config.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := logging.GetLogger("pages")
	store := services.NewDeliveryClient(config.StoreHost(), config.APIKey, config.DeliveryToken,
		config.Environment, config.StoreTimeout, logging.GetLogger("delivery"))
	cache := services.NewPageCache(config.PageCacheTTL, config.PageCacheMaxEntries)
	catalog := services.NewCatalog(store, config.Site, logger)

	h := &handlers.Handler{
		Assembler: &services.Assembler{
			Resolver:     services.NewResolver(store, config.Site, logging.GetLogger("resolver")),
			Catalog:      catalog,
			Blocks:       blocks.NewRegistry(logging.GetLogger("blocks")),
			Cache:        cache,
			Site:         config.Site,
			BaseURL:      config.AppURL,
			FetchTimeout: config.StoreTimeout,
			Logger:       logger,
		},
		Catalog:       catalog,
		Cache:         cache,
		Site:          config.Site,
		Precedence:    personalize.DefaultPrecedence(),
		WebhookSecret: config.WebhookSecret,
		Production:    config.Production,
		Logger:        logger,
	}

	r := gin.New()
	r.Use(logging.GinLogger(), gin.Recovery(), requestTimeout(config.RequestTimeout))

	// Session Setup
	sessionStore := cookie.NewStore([]byte(config.SessionSecret))
	sessionStore.Options(sessions.Options{Path: "/", HttpOnly: true, Secure: config.Production, MaxAge: 86400})
	r.Use(sessions.Sessions("cms-site", sessionStore))

	// Without the edge proxy the collector can run in-process.
	if config.PersonalizeInProcess && config.PersonalizeProjectUID != "" {
		collector := &personalize.Collector{
			Backend:      personalize.NewEdgeClient(config.PersonalizeEdgeAPIURL, config.PersonalizeTimeout),
			ProjectUID:   config.PersonalizeProjectUID,
			Site:         config.Site,
			Timeout:      config.PersonalizeTimeout,
			DebugHeaders: config.PersonalizeDebug,
			Logger:       logging.GetLogger("personalize"),
		}
		r.Use(collector.Gin())
	}

	r.SetHTMLTemplate(views.Templates())
	h.RegisterRoutes(r)

	srv := &http.Server{Addr: config.ListenAddr, Handler: r}
	go func() {
		log.Info().Str("addr", config.ListenAddr).Msg("Page server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Shutdown failed")
	}
}

// requestTimeout bounds every request's context so in-flight store calls
// are abandoned when it expires.
func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

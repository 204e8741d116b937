// Package handlers exposes the page pipeline over HTTP.
package handlers

import (
	"net/http"
	"strings"

	"cms-site/pkg/config"
	"cms-site/pkg/personalize"
	"cms-site/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handler carries the collaborators the page routes need.
type Handler struct {
	Assembler     *services.Assembler
	Catalog       *services.Catalog
	Cache         *services.PageCache
	Site          *config.SiteConfig
	Precedence    personalize.Precedence
	WebhookSecret string
	Production    bool
	Logger        zerolog.Logger
}

// RegisterRoutes mounts public, webhook and admin routes on r.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Root)
	r.GET("/sitemap.json", h.Sitemap)

	// --- Auth Routes ---
	r.GET("/login", LoginPage)
	r.GET("/login/github", GithubLogin)
	r.GET("/auth/callback", AuthCallback)
	r.GET("/logout", Logout)

	api := r.Group("/api")
	{
		api.GET("/personalize/debug", h.PersonalizeDebug)
		api.GET("/revalidate", h.RevalidateAll)
		api.POST("/revalidate", h.Revalidate)
	}

	admin := r.Group("/admin")
	admin.Use(AuthRequired)
	{
		admin.GET("/api/cache", h.CacheStats)
		admin.DELETE("/api/cache", h.PurgeCache)
	}

	r.GET("/:locale", h.Page)
	r.GET("/:locale/*slug", h.Page)
	r.NoRoute(h.NotFound)
}

// wantsJSON reports whether the caller asked for the page as data.
func wantsJSON(c *gin.Context) bool {
	if c.Query("format") == "json" {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

func (h *Handler) notFound(c *gin.Context, locale string) {
	if !h.Site.IsSupported(locale) {
		locale = h.Site.DefaultLocale
	}
	if wantsJSON(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "path": c.Request.URL.Path})
		return
	}
	dir := "ltr"
	if h.Site.IsRTL(locale) {
		dir = "rtl"
	}
	c.HTML(http.StatusNotFound, "not_found.html", gin.H{
		"Locale": locale,
		"Dir":    dir,
		"Path":   c.Request.URL.Path,
	})
}

func (h *Handler) NotFound(c *gin.Context) {
	h.notFound(c, h.Site.DefaultLocale)
}

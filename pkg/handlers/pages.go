package handlers

import (
	"net/http"
	"strconv"

	perrors "cms-site/pkg/errors"
	"cms-site/pkg/services"

	"github.com/gin-gonic/gin"
)

// Root sends visitors to the default locale's home page.
func (h *Handler) Root(c *gin.Context) {
	target := "/" + h.Site.DefaultLocale
	if q := c.Request.URL.RawQuery; q != "" {
		target += "?" + q
	}
	c.Redirect(http.StatusFound, target)
}

// Page serves /:locale and /:locale/*slug. A first segment that is not a
// supported locale is treated as part of a default-locale path.
func (h *Handler) Page(c *gin.Context) {
	locale := c.Param("locale")
	slug := c.Param("slug")

	if !h.Site.IsSupported(locale) {
		target := "/" + h.Site.DefaultLocale + "/" + locale + slug
		if q := c.Request.URL.RawQuery; q != "" {
			target += "?" + q
		}
		c.Redirect(http.StatusFound, target)
		return
	}

	variants := h.Precedence.Resolve(c.Request)
	page, _ := strconv.Atoi(c.Query("page"))

	view, err := h.Assembler.AssemblePage(c.Request.Context(), services.PageRequest{
		URL:            slug,
		Locale:         locale,
		VariantAliases: variants.Aliases,
		Page:           page,
	})
	if err != nil {
		if !perrors.IsNotFound(err) {
			h.Logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Page assembly failed")
		}
		h.notFound(c, locale)
		return
	}

	if len(variants.Aliases) > 0 {
		c.Header("Cache-Control", "private, no-store")
		c.Header("Vary", "Cookie")
	}
	if wantsJSON(c) {
		c.JSON(http.StatusOK, view)
		return
	}
	c.HTML(http.StatusOK, "page.html", view)
}

// Sitemap lists every routable path for a locale.
func (h *Handler) Sitemap(c *gin.Context) {
	locale := c.DefaultQuery("locale", h.Site.DefaultLocale)
	if !h.Site.IsSupported(locale) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported locale"})
		return
	}
	paths := h.Catalog.AllPagePaths(c.Request.Context(), locale)
	if paths == nil {
		paths = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"locale": locale, "paths": paths})
}

package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// webhookPayload is the subset of a publish webhook body we read.
type webhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		URL   string `json:"url"`
		Entry struct {
			URL string `json:"url"`
		} `json:"entry"`
	} `json:"data"`
	Entry struct {
		URL string `json:"url"`
	} `json:"entry"`
}

func (p webhookPayload) url() string {
	switch {
	case p.Data.URL != "":
		return p.Data.URL
	case p.Data.Entry.URL != "":
		return p.Data.Entry.URL
	case p.Entry.URL != "":
		return p.Entry.URL
	}
	return "/"
}

// authorizedWebhook checks the bearer secret. Without a configured secret
// only non-production servers accept the call.
func (h *Handler) authorizedWebhook(c *gin.Context) bool {
	if h.WebhookSecret == "" {
		return !h.Production
	}
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	return ok && subtle.ConstantTimeCompare([]byte(token), []byte(h.WebhookSecret)) == 1
}

// Revalidate drops cached pages for the published entry's URL, the home
// page and then everything else.
func (h *Handler) Revalidate(c *gin.Context) {
	if !h.authorizedWebhook(c) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var payload webhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.Logger.Debug().Err(err).Msg("Webhook body unreadable, revalidating everything")
	}
	path := payload.url()

	dropped := h.Cache.Invalidate(path)
	dropped += h.Cache.Invalidate("/")
	dropped += h.Cache.InvalidateAll()

	h.Logger.Info().Str("event", payload.Event).Str("path", path).Int("dropped", dropped).Msg("Revalidated")
	c.JSON(http.StatusOK, gin.H{"revalidated": true, "path": path, "dropped": dropped})
}

func (h *Handler) RevalidateAll(c *gin.Context) {
	if !h.authorizedWebhook(c) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	dropped := h.Cache.InvalidateAll()
	c.JSON(http.StatusOK, gin.H{"revalidated": true, "path": "/", "dropped": dropped})
}

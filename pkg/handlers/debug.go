package handlers

import (
	"net/http"

	"cms-site/pkg/personalize"

	"github.com/gin-gonic/gin"
)

// PersonalizeDebug reports the personalization identity of the caller. It
// has no side effects and always answers 200.
func (h *Handler) PersonalizeDebug(c *gin.Context) {
	report := personalize.BuildDebugReport(c.Request, h.Precedence)

	info := make([]gin.H, 0, len(report.Experiences))
	for _, exp := range report.Experiences {
		info = append(info, gin.H{"shortUid": exp.ShortUID, "status": exp.Status})
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"personalize": report,
		"help": gin.H{
			"experienceInfo": info,
		},
	})
}

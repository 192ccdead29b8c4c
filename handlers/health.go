package handlers

import (
	"net/http"

	"venuebook/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the last backend health snapshot.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status})
}

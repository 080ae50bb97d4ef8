package hooks

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// AppState reports service health. Clients poll it before opening a
// realtime connection.
func AppState() gin.HandlerFunc {
	return func(c *gin.Context) {

		// Return the service state
		c.JSON(http.StatusOK, gin.H{
			"data": gin.H{
				"status": "ok",
				"time":   time.Now().UTC(),
			},
		})

	}
}

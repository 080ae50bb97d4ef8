package hooks

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opengrove/commune-api/services"
	"github.com/opengrove/commune-api/v1/utils"
)

type ModUpdateSuspensionReq struct {
	AccountID uint64 `json:"account_id"`

	// Days is the new suspension duration, counted from now. Omitting
	// it clears the suspension entirely.
	Days   *int   `json:"days"`
	Reason string `json:"reason"`
}

func ModUpdateSuspension(
	trustService *services.TrustService,
) gin.HandlerFunc {
	return func(c *gin.Context) {

		// Get the request body
		var req ModUpdateSuspensionReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// Get the account sending the request
		actor := utils.CtxGetAccount(c)

		// Update the target account's suspension
		if err := trustService.UpdateSuspensionDuration(actor, req.AccountID, req.Days, req.Reason); err != nil {
			writeServiceError(c, err)
			return
		}

		// Otherwise return something successfully
		c.JSON(http.StatusOK, gin.H{
			"data": gin.H{},
		})

	}
}

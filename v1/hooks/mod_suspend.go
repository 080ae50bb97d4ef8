package hooks

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opengrove/commune-api/services"
	"github.com/opengrove/commune-api/v1/utils"
)

type ModSuspendReq struct {
	AccountID uint64 `json:"account_id"`
	Days      int    `json:"days"`
	Reason    string `json:"reason"`
}

func ModSuspend(
	trustService *services.TrustService,
) gin.HandlerFunc {
	return func(c *gin.Context) {

		// Get the request body
		var req ModSuspendReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// Get the account sending the request
		actor := utils.CtxGetAccount(c)

		// Suspend the target account
		if err := trustService.Suspend(actor, req.AccountID, req.Days, req.Reason); err != nil {
			writeServiceError(c, err)
			return
		}

		// Otherwise return something successfully
		c.JSON(http.StatusOK, gin.H{
			"data": gin.H{},
		})

	}
}

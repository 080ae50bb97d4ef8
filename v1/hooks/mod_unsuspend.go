package hooks

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opengrove/commune-api/services"
	"github.com/opengrove/commune-api/v1/utils"
)

type ModUnsuspendReq struct {
	AccountID uint64 `json:"account_id"`
	Reason    string `json:"reason"`
}

func ModUnsuspend(
	trustService *services.TrustService,
) gin.HandlerFunc {
	return func(c *gin.Context) {

		// Get the request body
		var req ModUnsuspendReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// Get the account sending the request
		actor := utils.CtxGetAccount(c)

		// Lift the target account's suspension
		if err := trustService.Unsuspend(actor, req.AccountID, req.Reason); err != nil {
			writeServiceError(c, err)
			return
		}

		// Otherwise return something successfully
		c.JSON(http.StatusOK, gin.H{
			"data": gin.H{},
		})

	}
}

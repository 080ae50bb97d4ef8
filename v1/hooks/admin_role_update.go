package hooks

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opengrove/commune-api/services"
	"github.com/opengrove/commune-api/v1/utils"
)

type AdminRoleUpdateReq struct {
	AccountID uint64 `json:"account_id"`
	Role      string `json:"role"`
}

func AdminRoleUpdate(
	trustService *services.TrustService,
) gin.HandlerFunc {
	return func(c *gin.Context) {

		// Get the request body
		var req AdminRoleUpdateReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// Get the account sending the request
		actor := utils.CtxGetAccount(c)

		// Change the target account's role
		if err := trustService.UpdateRole(actor, req.AccountID, req.Role); err != nil {
			writeServiceError(c, err)
			return
		}

		// Otherwise return something successfully
		c.JSON(http.StatusOK, gin.H{
			"data": gin.H{},
		})

	}
}

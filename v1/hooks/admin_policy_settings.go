package hooks

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opengrove/commune-api/services"
	"github.com/opengrove/commune-api/v1/utils"
)

type AdminPolicySettingsReq struct {
	ViolationWindowHours int `json:"violation_window_hours"`
	ViolationThreshold   int `json:"violation_threshold"`
	AutoSuspendHours     int `json:"auto_suspend_hours"`
}

func AdminPolicySettingsUpdate(
	policyService *services.PolicyService,
) gin.HandlerFunc {
	return func(c *gin.Context) {

		// Get the request body
		var req AdminPolicySettingsReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// Only admins can change the policy configuration
		actor := utils.CtxGetAccount(c)
		if actor == nil || !actor.IsAdmin() {
			writeServiceError(c, services.ErrUnauthorized)
			return
		}

		// Update the escalation thresholds
		err := policyService.UpdateSettings(
			req.ViolationWindowHours,
			req.ViolationThreshold,
			req.AutoSuspendHours,
		)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// Otherwise return something successfully
		c.JSON(http.StatusOK, gin.H{
			"data": gin.H{},
		})

	}
}

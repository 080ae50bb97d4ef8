package hooks

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opengrove/commune-api/services"
	"github.com/opengrove/commune-api/v1/utils"
)

type ModViolationsReq struct {
	AccountID uint64 `json:"account_id"`
	Limit     int    `json:"limit"`
}

func ModViolations(
	violationsService *services.ViolationsService,
) gin.HandlerFunc {
	return func(c *gin.Context) {

		// Get the request body
		var req ModViolationsReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// Only moderators can review violation histories
		actor := utils.CtxGetAccount(c)
		if actor == nil || !actor.IsModerator() {
			writeServiceError(c, services.ErrUnauthorized)
			return
		}

		// List the account's recent violations
		violations, err := violationsService.ListRecent(req.AccountID, req.Limit)
		if err != nil {
			writeServiceError(c, err)
			return
		}

		// Serialize the violations
		data := make([]gin.H, 0, len(violations))
		for _, v := range violations {
			data = append(data, gin.H{
				"id":          v.ID,
				"content_id":  v.ContentID,
				"kind":        v.Kind,
				"occurred_at": v.OccurredAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{
			"data": data,
		})

	}
}

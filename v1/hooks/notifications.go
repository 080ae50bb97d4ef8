package hooks

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opengrove/commune-api/services"
	"github.com/opengrove/commune-api/v1/utils"
)

type NotificationsListReq struct {
	Limit int `json:"limit"`
}

func NotificationsList(
	notificationsService *services.NotificationsService,
) gin.HandlerFunc {
	return func(c *gin.Context) {

		// Get the request body
		var req NotificationsListReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// Get the account sending the request
		account := utils.CtxGetAccount(c)

		// List the account's notifications
		notifications, err := notificationsService.ListForAccount(account.ID, req.Limit)
		if err != nil {
			writeServiceError(c, err)
			return
		}

		// Serialize the notifications
		data := make([]gin.H, 0, len(notifications))
		for _, n := range notifications {
			data = append(data, gin.H{
				"id":           n.ID,
				"kind":         n.Kind,
				"message":      n.Message,
				"read":         n.Read,
				"created_date": n.CreatedDate,
			})
		}
		c.JSON(http.StatusOK, gin.H{
			"data": data,
		})

	}
}

type NotificationsMarkReadReq struct {
	NotificationID string `json:"notification_id"`
}

func NotificationsMarkRead(
	notificationsService *services.NotificationsService,
) gin.HandlerFunc {
	return func(c *gin.Context) {

		// Get the request body
		var req NotificationsMarkReadReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// Get the account sending the request
		account := utils.CtxGetAccount(c)

		// Mark the notification as read
		if err := notificationsService.MarkRead(account.ID, req.NotificationID); err != nil {
			writeServiceError(c, err)
			return
		}

		// Otherwise return something successfully
		c.JSON(http.StatusOK, gin.H{
			"data": gin.H{},
		})

	}
}

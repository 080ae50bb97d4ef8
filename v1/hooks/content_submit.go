package hooks

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opengrove/commune-api/services"
	"github.com/opengrove/commune-api/v1/utils"
)

type ContentSubmitReq struct {
	Text string `json:"text"`
}

func ContentSubmit(
	contentService *services.ContentService,
) gin.HandlerFunc {
	return func(c *gin.Context) {

		// Get the request body
		var req ContentSubmitReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// Get the account sending the request
		account := utils.CtxGetAccount(c)

		// Run the submission pipeline
		result, err := contentService.SubmitContent(account, req.Text)
		if err != nil {
			writeServiceError(c, err)
			return
		}

		// A rejected submission is not an error; the reason tells the
		// user exactly why, including the end of their suspension
		if !result.Accepted {
			c.JSON(http.StatusOK, gin.H{
				"data": gin.H{
					"accepted":         false,
					"rejection_reason": result.RejectionReason,
				},
			})
			return
		}

		// Otherwise return the stored content
		c.JSON(http.StatusOK, gin.H{
			"data": gin.H{
				"accepted":    true,
				"content_id":  result.Content.ID,
				"stored_text": result.StoredText,
			},
		})

	}
}

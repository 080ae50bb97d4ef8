package hooks

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opengrove/commune-api/services"
	"github.com/opengrove/commune-api/v1/utils"
)

type AdminPolicyWordReq struct {
	Kind string `json:"kind"`
	Word string `json:"word"`
}

func AdminPolicyWordAdd(
	policyService *services.PolicyService,
) gin.HandlerFunc {
	return func(c *gin.Context) {

		// Get the request body
		var req AdminPolicyWordReq
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

		// Add the word to the policy
		word, err := policyService.AddWord(req.Kind, req.Word)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// Return the created word
		c.JSON(http.StatusOK, gin.H{
			"data": gin.H{
				"id":   word.ID,
				"kind": word.Kind,
				"word": word.Word,
			},
		})

	}
}

func AdminPolicyWordRemove(
	policyService *services.PolicyService,
) gin.HandlerFunc {
	return func(c *gin.Context) {

		// Get the request body
		var req AdminPolicyWordReq
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

		// Remove the word from the policy
		if err := policyService.RemoveWord(req.Kind, req.Word); err != nil {
			writeServiceError(c, err)
			return
		}

		// Otherwise return something successfully
		c.JSON(http.StatusOK, gin.H{
			"data": gin.H{},
		})

	}
}

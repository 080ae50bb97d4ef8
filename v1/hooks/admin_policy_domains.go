package hooks

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opengrove/commune-api/services"
	"github.com/opengrove/commune-api/v1/utils"
)

type AdminPolicyDomainReq struct {
	Domain string `json:"domain"`
}

func AdminPolicyDomainAdd(
	policyService *services.PolicyService,
) gin.HandlerFunc {
	return func(c *gin.Context) {

		// Get the request body
		var req AdminPolicyDomainReq
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

		// Add the domain to the policy
		domain, err := policyService.AddDomain(req.Domain)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// Return the created domain
		c.JSON(http.StatusOK, gin.H{
			"data": gin.H{
				"id":     domain.ID,
				"domain": domain.Domain,
			},
		})

	}
}

func AdminPolicyDomainRemove(
	policyService *services.PolicyService,
) gin.HandlerFunc {
	return func(c *gin.Context) {

		// Get the request body
		var req AdminPolicyDomainReq
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

		// Remove the domain from the policy
		if err := policyService.RemoveDomain(req.Domain); err != nil {
			writeServiceError(c, err)
			return
		}

		// Otherwise return something successfully
		c.JSON(http.StatusOK, gin.H{
			"data": gin.H{},
		})

	}
}

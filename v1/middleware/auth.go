package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/opengrove/commune-api/services"
	"github.com/opengrove/commune-api/v1/utils"
)

// CheckAuth resolves the bearer token on the request, if any, and puts
// the matching account onto the request context. Requests without a
// valid token pass through unauthenticated.
func CheckAuth(authTokensService *services.AuthTokensService) gin.HandlerFunc {
	return func(c *gin.Context) {

		// Pull the bearer token off the request
		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
		if len(token) == 0 {
			c.Next()
			return
		}

		// Resolve the account for the token
		account, err := authTokensService.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if account != nil {
			utils.CtxSetAccount(c, account)
		}
		c.Next()

	}
}

// RequireLogin rejects any request that has no authenticated account
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if utils.CtxGetAccount(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		c.Next()
	}
}

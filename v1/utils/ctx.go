package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/opengrove/commune-api/models"
)

// ctxKeyAccount is the gin context key holding the requesting account
const ctxKeyAccount = "account"

// CtxSetAccount stores the authenticated account on the request context
func CtxSetAccount(c *gin.Context, account *models.Account) {
	c.Set(ctxKeyAccount, account)
}

// CtxGetAccount gets the authenticated account from the request
// context, or nil if the request is unauthenticated
func CtxGetAccount(c *gin.Context) *models.Account {
	value, ok := c.Get(ctxKeyAccount)
	if !ok {
		return nil
	}
	account, ok := value.(*models.Account)
	if !ok {
		return nil
	}
	return account
}

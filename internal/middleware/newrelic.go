package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
)

// NewRelicSession tags the request's New Relic transaction with the caller.
// It must run after RequireSession; without an agent it does nothing.
func NewRelicSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		txn := nrgin.Transaction(c)
		if txn != nil {
			if session, ok := SessionFrom(c); ok {
				txn.AddAttribute("user.id", session.UserID)
			}
		}

		c.Next()

		// Record error if present.
		if txn != nil {
			for _, err := range c.Errors {
				txn.NoticeError(err.Err)
			}
		}
	}
}

package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sealant-catalog-backend/internal/platform/ctxutil"
)

const headerUserEmail = "X-User-Email"

// AttachRequestContext stores the caller details that audit rows record.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := &ctxutil.RequestData{
			UserEmail: strings.TrimSpace(c.GetHeader(headerUserEmail)),
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

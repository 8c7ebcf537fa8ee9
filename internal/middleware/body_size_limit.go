package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// DefaultMaxBodyBytes comfortably fits the largest valid submission
const DefaultMaxBodyBytes int64 = 64 << 10

// BodySizeLimitMiddleware caps request bodies at maxBodySize bytes. Reads past
// the cap fail; the route decides how to respond, so method gating and rate
// limiting still apply to oversized requests.
func BodySizeLimitMiddleware(maxBodySize int64) gin.HandlerFunc {
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodyBytes
	}
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
		default:
			if c.Request.ContentLength > maxBodySize {
				_ = c.Error(fmt.Errorf("declared body of %d bytes exceeds %d byte limit", //nolint:errcheck
					c.Request.ContentLength, maxBodySize))
			}
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
		}

		c.Next()
	}
}

package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(c *gin.Context) string

// ClientIPKey buckets requests by caller address. gin only honours
// X-Forwarded-For and X-Real-IP when the peer is a proxy registered with
// SetTrustedProxies, so the header cannot be used to pick a fresh bucket.
func ClientIPKey(c *gin.Context) string {
	return c.ClientIP()
}

// ParamKey buckets requests by a path parameter, e.g. the booking a
// cancellation code is being confirmed for.
func ParamKey(name string) KeyFunc {
	return func(c *gin.Context) string {
		return name + ":" + strings.TrimSpace(c.Param(name))
	}
}

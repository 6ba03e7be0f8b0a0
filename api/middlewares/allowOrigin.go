package middlewares

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/moyoez/diary-upload-go/tool"
)

// OriginAllowed reports whether a request carrying origin may use the control
// API. No Origin means a non-browser client. A page served from the API's own
// host is accepted as well as the configured origins.
func OriginAllowed(origin, host string, allowed []string) bool {
	if origin == "" {
		return true
	}
	origin = strings.TrimRight(origin, "/")
	if strings.EqualFold(origin, "http://"+host) {
		return true
	}
	return slices.Contains(allowed, origin)
}

// OnlyAllowOrigins rejects browser requests from pages outside allowed. CORS
// alone is not enough here: a multipart POST is sent without a preflight.
func OnlyAllowOrigins(allowed []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !OriginAllowed(c.GetHeader("Origin"), c.Request.Host, allowed) {
			c.AbortWithStatusJSON(http.StatusForbidden, tool.FastReturnError("Origin not allowed"))
			return
		}
		c.Next()
	}
}

package session

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"simcoe_portal/internal/upstream"
	"simcoe_portal/platform/httpkit"
)

// Middleware resolves the portal session named by the validated access
// token and plants the upstream bearer token plus the session id into
// the request context. Runs after httpkit.AuthRequired. A token whose
// session is gone (expired, logged out, or torn down after an upstream
// 401) fails here with 401, which is what forces the re-login.
func Middleware(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := httpkit.MustGetIdentity(c)
		if id == nil {
			return
		}

		sess, err := svc.Resolve(c.Request.Context(), id.SessionID())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}

		ctx := upstream.ContextWithToken(c.Request.Context(), sess.UpstreamToken)
		ctx = ContextWithID(ctx, sess.ID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

package middleware

import (
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/lnflash/flash-admin-console/internal/domain"
)

const (
	actorHeader     = "X-Admin-User"
	actorContextKey = "actor"
)

// defaultActor is used when the deployment's auth proxy does not forward an
// identity header.
const defaultActor = domain.DefaultActor

var actorPattern = regexp.MustCompile(`^[A-Za-z0-9@._+-]{1,64}$`)

// Actor returns a gin middleware that records the acting administrator's
// identity for audit fields. The identity is read from the X-Admin-User
// header, which the deployment's auth proxy sets after authenticating the
// operator. Missing or malformed values fall back to a fixed identity so
// review actions always carry an auditable name.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.GetHeader(actorHeader)
		if !actorPattern.MatchString(actor) {
			actor = defaultActor
		}
		c.Set(actorContextKey, actor)
		// Services read the actor from the Go context for audit fields and
		// upstream token claims.
		c.Request = c.Request.WithContext(domain.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

// GetActor extracts the acting administrator's identity from the gin.Context.
// Returns the fallback identity if the Actor middleware did not run.
func GetActor(c *gin.Context) string {
	if v, exists := c.Get(actorContextKey); exists {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return defaultActor
}

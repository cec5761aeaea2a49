// Package middleware implements the gin middleware chain: bearer-token
// authentication per role and rate limiting (CORS is wired in routes). Grounded on the
// teacher's middleware/auth.go, userAuth.go, providerAuth.go, role.go,
// rate_limiter.go, and getClientIP.go.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"caretime/apierr"
	"caretime/credentials"
	"caretime/models"
)

const (
	ctxPrincipalID = "principalId"
	ctxSessionID   = "sessionId"
	ctxRole        = "role"
)

// BearerAuth validates the Authorization header's access token, requiring
// it to carry the given role, and stashes the principal/session id in the
// gin context for handlers to read. Adapted from the teacher's
// JWTAuthUserMiddleware/JWTAuthProviderMiddleware pair, generalized into a
// single role-parameterized middleware since both variants share one
// token format (credentials.AccessClaims) here.
func BearerAuth(minter *credentials.TokenMinter, role models.PrincipalRole, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			apierr.Respond(c, logger, apierr.New(apierr.KindUnauthorized, "missing or invalid authorization header"))
			c.Abort()
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims, err := minter.VerifyAccessToken(tokenString)
		if err != nil {
			apierr.Respond(c, logger, err)
			c.Abort()
			return
		}
		if claims.Role != role {
			apierr.Respond(c, logger, apierr.New(apierr.KindForbidden, "token is not valid for this role"))
			c.Abort()
			return
		}

		c.Set(ctxPrincipalID, claims.PrincipalID)
		c.Set(ctxSessionID, claims.SessionID)
		c.Set(ctxRole, string(claims.Role))
		c.Next()
	}
}

// PrincipalID reads the authenticated caller's id, set by BearerAuth.
func PrincipalID(c *gin.Context) string {
	v, _ := c.Get(ctxPrincipalID)
	id, _ := v.(string)
	return id
}

// SessionID reads the authenticated caller's current session id, set by BearerAuth.
func SessionID(c *gin.Context) string {
	v, _ := c.Get(ctxSessionID)
	id, _ := v.(string)
	return id
}

// Recovery is re-exported for route wiring convenience.
var Recovery = apierr.RecoveryMiddleware

// NotFoundHandler renders the §7 uniform envelope for unmatched routes.
func NotFoundHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		apierr.Respond(c, logger, apierr.NotFound("no such route"))
	}
}

package http

import (
	"log/slog"
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	authService "github.com/allisson/credstore/internal/auth/service"
	apperrors "github.com/allisson/credstore/internal/errors"
	"github.com/allisson/credstore/internal/httputil"
)

// bearerToken extracts the token of an "Authorization: Bearer <token>" header. The
// scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// AuthenticationMiddleware verifies the bearer token and stores the principal in the
// request context. Every failure is a 401 carrying a WWW-Authenticate challenge.
func AuthenticationMiddleware(verifier authService.TokenVerifier, logger *slog.Logger) gin.HandlerFunc {
	reject := func(c *gin.Context, err error) {
		c.Header("WWW-Authenticate", `Bearer realm="credstore"`)
		httputil.HandleErrorGin(c, err, logger)
		c.Abort()
	}

	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			reject(c, apperrors.Wrap(apperrors.ErrUnauthorized, "missing or malformed bearer token"))
			return
		}

		principal, err := verifier.Verify(token)
		if err != nil {
			reject(c, err)
			return
		}

		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

// RequestInfoMiddleware records who issued the request and how, for the audit trail.
// It must run after requestid and AuthenticationMiddleware.
func RequestInfoMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, _ := GetActor(c.Request.Context())
		info := auditDomain.RequestInfo{
			RequestID: requestid.Get(c),
			Actor:     actor,
			Path:      c.Request.URL.Path,
			Method:    c.Request.Method,
		}
		c.Request = c.Request.WithContext(auditDomain.WithRequestInfo(c.Request.Context(), info))
		c.Next()
	}
}

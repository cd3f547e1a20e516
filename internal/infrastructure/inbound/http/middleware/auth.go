package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	ports "feedstack-post-service/internal/domain/ports/output"
	"feedstack-post-service/internal/infrastructure/inbound/http/response"

	"github.com/gin-gonic/gin"
)

const userIDKey = "user_id"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (int64, error)
}

// RequireAuth rejects requests without a bearer token with 401 and requests
// with an invalid or expired token with 403.
func RequireAuth(auth Authenticator, log ports.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			log.Debug("Request without token", slog.String("path", c.Request.URL.Path))
			response.Error(c, http.StatusUnauthorized, "access denied: no token provided")
			return
		}

		userID, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			log.Debug("Invalid token", slog.String("path", c.Request.URL.Path), slog.String("error", err.Error()))
			response.Error(c, http.StatusForbidden, "invalid token")
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the caller set by RequireAuth.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

package auth

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

type contextKey string

const callerIDKey contextKey = "caller_id"

// Middleware resolves an optional "Bearer <token>" Authorization
// header and injects the caller identity into the request context.
// Requests without a valid token proceed anonymously; each service
// decides for itself whether an operation requires authentication.
func Middleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.Next()
			return
		}

		claims, err := ValidateToken(secret, parts[1])
		if err != nil {
			// Invalid or expired token resolves to anonymous.
			c.Next()
			return
		}

		c.Request = c.Request.WithContext(WithCaller(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// WithCaller returns a context carrying the authenticated user id.
// Identity travels explicitly with the context into every service
// call; there is no ambient "current user" state.
func WithCaller(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, callerIDKey, userID)
}

// CallerID resolves the current caller. The boolean is false for
// anonymous requests.
func CallerID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(callerIDKey).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

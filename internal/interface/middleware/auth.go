package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/todo-calendar-api/internal/domain/repository"
	"github.com/oksasatya/todo-calendar-api/pkg/helpers"
	"github.com/oksasatya/todo-calendar-api/pkg/response"
)

// Gin context keys set by Auth.
const (
	CtxUserIDKey      = "userID"
	CtxUserEmailKey   = "userEmail"
	CtxTokenIDKey     = "tokenID"
	CtxTokenExpiryKey = "tokenExpiry"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Email  string
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the caller attached by Auth, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Auth validates the bearer token and rejects revoked ones. It sets userID,
// userEmail, tokenID and tokenExpiry in the Gin context on success and
// attaches the Identity to the request context.
func Auth(tokens *helpers.TokenManager, revocations repository.RevocationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "Access token required", nil)
			return
		}
		claims, err := tokens.Parse(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "Invalid or expired token", nil)
			return
		}
		if revocations != nil && claims.ID != "" {
			revoked, err := revocations.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				response.FromError(c, err)
				return
			}
			if revoked {
				response.Error(c, http.StatusUnauthorized, "Token has been revoked", nil)
				return
			}
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxUserEmailKey, claims.Email)
		c.Set(CtxTokenIDKey, claims.ID)
		c.Set(CtxTokenExpiryKey, claims.Expiry())
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), Identity{UserID: claims.UserID, Email: claims.Email}))
		c.Next()
	}
}

// TokenExpiry returns the expiry Auth stored, zero for non-expiring tokens.
func TokenExpiry(c *gin.Context) time.Time {
	if v, ok := c.Get(CtxTokenExpiryKey); ok {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}
	return time.Time{}
}

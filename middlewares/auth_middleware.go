package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/bierdeckel/bierdeckel-api/utils"
)

const (
	ContextUserID       = "user_id"
	ContextRole         = "role"
	ContextRestaurantID = "restaurant_id"
	contextClaims       = "claims"
)

// Authenticator verifies a raw bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*utils.CustomClaims, error)
}

// AuthMiddleware requires an "Authorization: Bearer <token>" header.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abortAuth(c, err)
			return
		}
		authenticate(c, auth, token)
	}
}

// WebSocketAuthMiddleware reads the token from the "token" query parameter,
// since browsers cannot set headers on a websocket handshake.
func WebSocketAuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, auth, c.Query("token"))
	}
}

func authenticate(c *gin.Context, auth Authenticator, token string) {
	claims, err := auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		abortAuth(c, err)
		return
	}

	c.Set(contextClaims, claims)
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextRole, claims.Role)
	c.Set(ContextRestaurantID, claims.RestaurantID)
	c.Next()
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", utils.ErrTokenMissing
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", utils.ErrTokenMalformed
	}
	return strings.TrimSpace(token), nil
}

func abortAuth(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrTokenMissing),
		errors.Is(err, utils.ErrTokenMalformed),
		errors.Is(err, utils.ErrTokenExpired),
		errors.Is(err, utils.ErrTokenSignatureInvalid),
		errors.Is(err, utils.ErrTokenUserMissing):
		utils.InfoLogger.WithFields(logrus.Fields{
			"path":   c.FullPath(),
			"reason": err.Error(),
		}).Warn("rejected token")
		utils.RespondError(c, http.StatusUnauthorized, err)
	default:
		utils.ErrorLogger.Errorf("authenticate: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("authentication unavailable"))
	}
	c.Abort()
}

// ClaimsFrom returns the claims stored by the auth middlewares.
func ClaimsFrom(c *gin.Context) (*utils.CustomClaims, bool) {
	v, ok := c.Get(contextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.CustomClaims)
	return claims, ok
}

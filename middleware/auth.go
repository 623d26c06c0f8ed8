package middleware

import (
	"context"
	"errors"
	"strings"

	"carrental-api/models"
	"carrental-api/repositories"
	"carrental-api/services"
	"carrental-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	SessionCookie = "token"

	ContextUserID = "user_id"
	ContextRole   = "user_role"
	ContextUser   = "user"
)

// TokenParser verifies session tokens.
type TokenParser interface {
	ParseToken(token string) (*services.SessionClaims, error)
}

// UserLoader fetches the account behind a session.
type UserLoader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// AuthMiddleware requires a valid session. The user is reloaded on every
// request so role changes and deleted accounts take effect immediately.
func AuthMiddleware(tokens TokenParser, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := sessionToken(c)
		if raw == "" {
			utils.SendError(c, utils.UnauthorizedError("User Not Authenticated"))
			return
		}

		claims, err := tokens.ParseToken(raw)
		if err != nil {
			utils.Logger.WithError(err).Debug("rejected session token")
			utils.SendError(c, utils.UnauthorizedError("Invalid token"))
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				utils.SendError(c, utils.UnauthorizedError("Invalid token"))
				return
			}
			utils.SendError(c, utils.InternalError("Internal Server Error", err))
			return
		}
		if user.Role != claims.Role {
			utils.Logger.WithFields(logrus.Fields{
				"user_id":     user.ID,
				"token_role":  claims.Role,
				"stored_role": user.Role,
			}).Debug("session role is stale, using stored role")
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextRole, user.Role)
		c.Set(ContextUser, user)
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		utils.SendError(c, utils.AccessDeniedError("Access denied"))
	}
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(ContextUser); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// sessionToken reads the cookie first, then a Bearer header.
func sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	apierrors "github.com/cartbridge/partnerhub/pkg/api/errors"
	"github.com/cartbridge/partnerhub/pkg/auth"
)

// Context keys set by the JWT middleware
const (
	ContextPartnerID   = "partner_id"
	ContextPartnerKind = "partner_kind"
	ContextPartnerRole = "partner_role"
	ContextEmail       = "partner_email"
	ContextToken       = "jwt_token"
)

// JWTMiddleware validates the bearer token, checks the revocation list, and
// stores the partner identity on the request context.
func JWTMiddleware(secret string, blacklist *auth.TokenBlacklist) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				return apierrors.UnauthorizedError(c)
			}

			token := strings.TrimPrefix(header, "Bearer ")

			claims, err := auth.ValidateJWTWithBlacklist(c.Request().Context(), token, secret, blacklist)
			if err != nil {
				return apierrors.UnauthorizedError(c)
			}

			c.Set(ContextPartnerID, claims.PartnerID)
			c.Set(ContextPartnerKind, claims.Kind)
			c.Set(ContextPartnerRole, claims.Role)
			c.Set(ContextEmail, claims.Email)
			c.Set(ContextToken, token)

			return next(c)
		}
	}
}

// PartnerID extracts the authenticated partner id from the context.
// Returns 0 when the request is unauthenticated.
func PartnerID(c echo.Context) uint {
	id, _ := c.Get(ContextPartnerID).(uint)
	return id
}

// PartnerEmail extracts the authenticated partner email from the context
func PartnerEmail(c echo.Context) string {
	email, _ := c.Get(ContextEmail).(string)
	return email
}

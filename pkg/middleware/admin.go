package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	apierrors "github.com/cartbridge/partnerhub/pkg/api/errors"
	"github.com/cartbridge/partnerhub/pkg/domain"
)

// RequireAdmin ensures the authenticated partner has the admin role. The
// role is re-read from the database so a demotion takes effect before the
// token expires.
func RequireAdmin(db *gorm.DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			partnerID := PartnerID(c)
			if partnerID == 0 {
				return apierrors.UnauthorizedError(c)
			}

			var partner domain.Partner
			err := db.WithContext(c.Request().Context()).First(&partner, partnerID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apierrors.UnauthorizedError(c)
				}
				return apierrors.DatabaseError(c, err)
			}

			if partner.Role != domain.RoleAdmin {
				return apierrors.ForbiddenError(c)
			}

			c.Set(ContextPartnerRole, partner.Role)

			return next(c)
		}
	}
}

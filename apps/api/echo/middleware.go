package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/boardwave/academy/core/user"
)

// roleMiddleware restricts a route to users holding any of the given roles.
// Admins always pass. With no roles given, only admins pass.
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin {
				return next(ctx)
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}

func adminMiddleware() echo.MiddlewareFunc {
	return roleMiddleware()
}

func mentorMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(user.RoleMentor)
}

// viewerMiddleware guards read-only reporting endpoints; mentors see them too.
func viewerMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(user.RoleViewer, user.RoleMentor)
}

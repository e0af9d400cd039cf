package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/entregas/core"
	"github.com/trezcool/entregas/core/user"
)

const (
	headerUserIdentifier = "X-User-Identifier"
	headerUserRole       = "X-User-Role"

	ctxIdentityKey = "identity"
)

// identityMiddleware stores the identity the client claims to act as, if any.
// It is not verified: it only serves to attribute error reports.
func identityMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		req := ctx.Request()
		if identifier := core.CleanString(req.Header.Get(headerUserIdentifier)); identifier != "" {
			ctx.Set(ctxIdentityKey, user.Identity{
				Identifier: identifier,
				Role:       core.CleanString(req.Header.Get(headerUserRole), true /* lower */),
			})
		}
		return next(ctx)
	}
}

func getContextIdentity(ctx echo.Context) user.Identity {
	id, _ := ctx.Get(ctxIdentityKey).(user.Identity)
	return id
}

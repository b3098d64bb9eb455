package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/urbannest/auth-api/internal/core/domain"
)

// ctxPrincipal extracts the claims injected by the Auth middleware and
// performs a fast-fail check before any service call: both the id and the
// type must be present (presence proves the middleware ran), and the type
// must name one of the two credential collections.
func ctxPrincipal(c echo.Context) (id string, ptype domain.PrincipalType, err error) {
	id, _ = c.Get("principal_id").(string)
	typ, _ := c.Get("principal_type").(string)
	if id == "" || typ == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	ptype = domain.PrincipalType(typ)
	if ptype != domain.PrincipalAdmin && ptype != domain.PrincipalUser {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authentication claims")
	}

	return id, ptype, nil
}

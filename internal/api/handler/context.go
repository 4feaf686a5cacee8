package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/botlab/robot-access/internal/api/middleware"
	"github.com/botlab/robot-access/internal/core/domain"
)

// ctxAccount extracts the account injected by the Auth middleware. A missing
// account means the route was wired without Auth; treat it as unauthenticated.
func ctxAccount(c echo.Context) (*domain.Account, error) {
	acc := middleware.Account(c)
	if acc == nil {
		return nil, domain.ErrInvalidToken
	}
	return acc, nil
}

// ctxResource returns the resource parsed by RequireResource, falling back to
// the raw path parameter.
func ctxResource(c echo.Context) (domain.Resource, error) {
	if r, ok := c.Get(middleware.ResourceKey).(domain.Resource); ok {
		return r, nil
	}
	return domain.ParseResource(c.Param("resource"))
}

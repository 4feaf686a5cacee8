package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/botlab/robot-access/internal/api/metrics"
	"github.com/botlab/robot-access/internal/core/domain"
)

// AccountKey is the echo context key holding the caller's *domain.Account.
const AccountKey = "account"

// IdentityResolver turns a session token into the current account.
type IdentityResolver interface {
	CurrentIdentity(ctx context.Context, token string) (*domain.Account, error)
}

// Auth validates the bearer token against the session authority and injects
// the resolved account into the context.
func Auth(resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return fmt.Errorf("%w: missing authorization header", domain.ErrInvalidToken)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return fmt.Errorf("%w: invalid authorization header", domain.ErrInvalidToken)
			}

			acc, err := resolver.CurrentIdentity(c.Request().Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				metrics.SessionVerificationsTotal.WithLabelValues(domain.KindOf(err)).Inc()
				return err
			}
			metrics.SessionVerificationsTotal.WithLabelValues("ok").Inc()

			c.Set(AccountKey, acc)
			return next(c)
		}
	}
}

// Account returns the account injected by Auth, or nil.
func Account(c echo.Context) *domain.Account {
	acc, _ := c.Get(AccountKey).(*domain.Account)
	return acc
}

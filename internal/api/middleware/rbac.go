package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/botlab/robot-access/internal/api/metrics"
	"github.com/botlab/robot-access/internal/core/domain"
	"github.com/botlab/robot-access/internal/core/policy"
)

// ResourceKey is the echo context key holding the parsed domain.Resource.
const ResourceKey = "resource"

// RequireManager admits only accounts that may manage other accounts.
// It must run after Auth.
func RequireManager() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !policy.CanManageAccounts(Account(c)) {
				return domain.ErrNotAuthorized
			}
			return next(c)
		}
	}
}

// RequireResource parses the :resource path parameter and asks the policy
// engine whether the caller may operate it at the current instant.
// It must run after Auth. A nil clock means time.Now.
func RequireResource(clock func() time.Time) echo.MiddlewareFunc {
	if clock == nil {
		clock = time.Now
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			resource, err := domain.ParseResource(c.Param("resource"))
			if err != nil {
				return err
			}

			d := policy.CanOperate(Account(c), resource, clock())
			metrics.PolicyDecisionsTotal.WithLabelValues(string(resource), decisionLabel(d)).Inc()
			if err := d.Err(); err != nil {
				return err
			}

			c.Set(ResourceKey, resource)
			return next(c)
		}
	}
}

func decisionLabel(d policy.Decision) string {
	if d.Allowed {
		return "allowed"
	}
	return domain.KindOf(d.Err())
}

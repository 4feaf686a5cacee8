package middleware

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"

	"github.com/botlab/robot-access/internal/core/domain"
)

// DeviceKeyHeader carries the shared key robots present on relay calls.
const DeviceKeyHeader = "X-Device-Key"

// DeviceKey guards the robot-to-authority relay endpoints. An empty key
// disables the check.
func DeviceKey(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if key == "" {
				return next(c)
			}
			got := c.Request().Header.Get(DeviceKeyHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				return domain.ErrNotAuthorized
			}
			return next(c)
		}
	}
}

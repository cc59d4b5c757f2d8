package middleware

// station.go authenticates the hardware scanner bridge.  The bridge is a
// headless device that cannot run an OAuth flow, so it presents a static
// station key in the X-Station-Key header; the server holds only the
// bcrypt hash of that key.  An empty configured hash disables the check
// (development mode).

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/reeliz-ticketing/internal/utils"
)

// StationKey returns middleware that verifies the X-Station-Key header
// against the configured bcrypt hash.  Requests without a matching key
// are rejected with 401.
func StationKey(keyHash string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if keyHash == "" {
				return next(c)
			}
			key := c.Request().Header.Get("X-Station-Key")
			if key == "" || !utils.VerifyStationKey(keyHash, key) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid station key"})
			}
			return next(c)
		}
	}
}

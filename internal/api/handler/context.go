package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxOwner extracts the owner identity injected by the Auth middleware (or
// the dev fallback) and fast-fails before any service call: an empty user_id
// means no identity-injecting middleware ran, so the request is unusable.
func ctxOwner(c echo.Context) (string, error) {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return userID, nil
}

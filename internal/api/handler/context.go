package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// partnerClaims extracts the auth claims injected by the Auth middleware and
// performs a fast-fail check before any service call: a partner token without
// a partner profile id is structurally valid but operationally unusable.
func partnerClaims(c echo.Context) (partnerID, partnerName string, err error) {
	role, _ := c.Get("role").(string)
	if role == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	partnerID, _ = c.Get("partner_id").(string)
	if partnerID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "token missing partner identity")
	}

	partnerName, _ = c.Get("name").(string)
	return partnerID, partnerName, nil
}

// userClaims returns the authenticated user id.
func userClaims(c echo.Context) (string, error) {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return userID, nil
}

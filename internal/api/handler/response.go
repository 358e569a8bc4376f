package handler

import "github.com/labstack/echo/v4"

// Envelope is the canonical response shape for every endpoint, success and
// failure alike. Error carries a stable machine-readable tag on failures and
// is null on success; Data is the inverse.
type Envelope struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Error   any    `json:"error"`
}

func respond(c echo.Context, code int, message string, data any) error {
	return c.JSON(code, Envelope{
		Success: true,
		Code:    code,
		Message: message,
		Data:    data,
	})
}

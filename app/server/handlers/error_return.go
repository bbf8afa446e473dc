package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"daily-journalist/app/server/types"
	"daily-journalist/app/server/utils"
)

func (a *App) er(c echo.Context, statusCode int) error {
	return c.JSON(statusCode, &types.ErrorMessage{
		Message: utils.P(http.StatusText(statusCode)),
	})
}

func (a *App) erMsg(c echo.Context, statusCode int, msg string) error {
	return c.JSON(statusCode, &types.ErrorMessage{
		Message: utils.P(msg),
	})
}

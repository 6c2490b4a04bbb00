package router

import (
	"github.com/labstack/echo/v4"

	"gemdesk/internal/adapter/api/handler"
)

func SetupDirectoryRouter(e *echo.Echo, directoryHandler *handler.DirectoryHandler) {
	e.GET("/v1/directory", directoryHandler.GetDirectory)
	e.POST("/v1/directory/reload", directoryHandler.ReloadDirectory)
}

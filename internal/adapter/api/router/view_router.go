package router

import (
	"github.com/labstack/echo/v4"

	"gemdesk/internal/adapter/api/handler"
)

func SetupViewRouter(e *echo.Echo, viewHandler *handler.ViewHandler) {
	e.GET("/v1/view", viewHandler.GetView)
	e.PUT("/v1/view", viewHandler.UpdateView)
}

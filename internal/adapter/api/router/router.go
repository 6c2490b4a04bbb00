package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gemdesk/internal/adapter/api/handler"
)

func Setup(
	e *echo.Echo,
	conversationHandler *handler.ConversationHandler,
	directoryHandler *handler.DirectoryHandler,
	viewHandler *handler.ViewHandler,
	healthHandler *handler.HealthHandler,
) {
	SetupConversationRouter(e, conversationHandler)
	SetupDirectoryRouter(e, directoryHandler)
	SetupViewRouter(e, viewHandler)

	e.GET("/health", healthHandler.CheckHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

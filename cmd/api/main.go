package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"gemdesk/internal/adapter/api"
	"gemdesk/internal/adapter/api/handler"
	"gemdesk/internal/adapter/api/router"
	"gemdesk/internal/adapter/client"
	"gemdesk/internal/adapter/repository"
	"gemdesk/internal/usecase"
	"gemdesk/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	directoryClient := client.NewRestDirectoryClient(cfg.DirectoryBaseURL, cfg.HTTPTimeout)
	externalStore := client.NewExternalMessageClient(cfg.ExternalStoreBaseURL, cfg.HTTPTimeout)
	internalStore := client.NewInternalMessageClient(cfg.InternalStoreBaseURL, cfg.HTTPTimeout)
	suggestionClient := client.NewRestSuggestionClient(cfg.SuggestionBaseURL, cfg.HTTPTimeout)

	conversationRepo := repository.NewMemoryConversationRepository()

	directoryUseCase := usecase.NewDirectoryUseCase(directoryClient)
	conversationUseCase := usecase.NewConversationUseCase(
		conversationRepo,
		directoryUseCase,
		externalStore,
		internalStore,
		suggestionClient,
		cfg.SessionUserID,
		cfg.FetchConcurrency,
	)
	poller := usecase.NewFreshnessPoller(conversationUseCase, cfg.PollInterval)
	viewUseCase := usecase.NewViewUseCase(conversationUseCase, poller)

	// Initial aggregation runs in the background so startup is not gated on
	// slow backends; the UI polls /v1/conversations as results land.
	go func() {
		if err := conversationUseCase.RefreshAll(ctx); err != nil {
			log.Printf("Initial aggregation completed with errors: %v", err)
		}
	}()

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	conversationHandler := handler.NewConversationHandler(conversationUseCase, viewUseCase)
	directoryHandler := handler.NewDirectoryHandler(directoryUseCase)
	viewHandler := handler.NewViewHandler(viewUseCase)
	healthHandler := handler.NewHealthHandler()

	router.Setup(e, conversationHandler, directoryHandler, viewHandler, healthHandler)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}

package router

import (
	"github.com/labstack/echo/v4"

	"gemdesk/internal/adapter/api/handler"
)

// SetupConversationRouter sets up the aggregation core's routes
func SetupConversationRouter(e *echo.Echo, conversationHandler *handler.ConversationHandler) {
	conversationGroup := e.Group("/v1/conversations")

	conversationGroup.GET("", conversationHandler.ListConversations)        // GET /v1/conversations - Visible conversation list
	conversationGroup.GET("/:id", conversationHandler.GetConversation)      // GET /v1/conversations/:id - One conversation with messages
	conversationGroup.PUT("/:id/read", conversationHandler.MarkAsRead)      // PUT /v1/conversations/:id/read - Mark as read
	conversationGroup.POST("/:id/messages", conversationHandler.SendMessage)   // POST /v1/conversations/:id/messages - Optimistic send
	conversationGroup.POST("/:id/suggestions", conversationHandler.SuggestReplies) // POST /v1/conversations/:id/suggestions - Reply suggestions
	conversationGroup.POST("/resolve-group", conversationHandler.ResolveGroup)     // POST /v1/conversations/resolve-group - Exact-set group match

	e.POST("/v1/refresh", conversationHandler.Refresh) // POST /v1/refresh - Full reload
}

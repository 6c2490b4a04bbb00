package handler

import (
	"github.com/labstack/echo/v4"

	"gemdesk/internal/domain/entity"
	"gemdesk/internal/usecase"
	"gemdesk/pkg/response"
)

type ConversationHandler struct {
	conversationUseCase *usecase.ConversationUseCase
	viewUseCase         *usecase.ViewUseCase
}

func NewConversationHandler(conversationUseCase *usecase.ConversationUseCase, viewUseCase *usecase.ViewUseCase) *ConversationHandler {
	return &ConversationHandler{
		conversationUseCase: conversationUseCase,
		viewUseCase:         viewUseCase,
	}
}

type sendMessageRequest struct {
	Content     string              `json:"content" validate:"required"`
	Attachments []attachmentRequest `json:"attachments,omitempty"`
}

type attachmentRequest struct {
	Name       string `json:"name" validate:"required"`
	Size       int64  `json:"size"`
	MimeType   string `json:"mime_type"`
	StorageRef string `json:"storage_ref" validate:"required"`
}

type resolveGroupRequest struct {
	MemberIDs []string `json:"member_ids" validate:"required,min=1"`
	Kind      string   `json:"kind" validate:"required,oneof=external internal"`
}

// ListConversations returns the filtered, sorted visible set alongside the
// best-effort last error.
func (h *ConversationHandler) ListConversations(c echo.Context) error {
	conversations := h.viewUseCase.VisibleConversations()

	payload := map[string]interface{}{
		"conversations": conversations,
	}
	if err := h.conversationUseCase.LastError(); err != nil {
		payload["last_error"] = err.Error()
	}

	return response.Success(c, payload)
}

func (h *ConversationHandler) GetConversation(c echo.Context) error {
	conversation, err := h.conversationUseCase.GetByID(c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, conversation)
}

func (h *ConversationHandler) MarkAsRead(c echo.Context) error {
	if err := h.conversationUseCase.MarkConversationAsRead(c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	conversation, err := h.conversationUseCase.GetByID(c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, conversation)
}

func (h *ConversationHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	attachments := make([]entity.Attachment, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		attachments = append(attachments, entity.Attachment{
			Name:       a.Name,
			Size:       a.Size,
			MimeType:   a.MimeType,
			StorageRef: a.StorageRef,
		})
	}

	message, err := h.conversationUseCase.SendMessage(c.Request().Context(), usecase.SendMessageInput{
		ConversationID: c.Param("id"),
		Content:        req.Content,
		Attachments:    attachments,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *ConversationHandler) SuggestReplies(c echo.Context) error {
	suggestions, err := h.conversationUseCase.SuggestReplies(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]interface{}{"suggestions": suggestions})
}

func (h *ConversationHandler) ResolveGroup(c echo.Context) error {
	var req resolveGroupRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	conversation, err := h.conversationUseCase.ResolveGroup(req.MemberIDs, entity.ConversationKind(req.Kind))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conversation)
}

// Refresh re-runs the directory load and the full aggregation pass.
func (h *ConversationHandler) Refresh(c echo.Context) error {
	err := h.conversationUseCase.RefreshAll(c.Request().Context())

	payload := map[string]interface{}{
		"conversations": h.viewUseCase.VisibleConversations(),
	}
	if err != nil {
		// Partial data still goes out; the error rides alongside.
		payload["last_error"] = err.Error()
	}

	return response.Success(c, payload)
}

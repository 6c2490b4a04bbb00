package handler

import (
	"github.com/labstack/echo/v4"

	"gemdesk/internal/domain/entity"
	"gemdesk/internal/usecase"
	"gemdesk/pkg/response"
)

type ViewHandler struct {
	viewUseCase *usecase.ViewUseCase
}

func NewViewHandler(viewUseCase *usecase.ViewUseCase) *ViewHandler {
	return &ViewHandler{
		viewUseCase: viewUseCase,
	}
}

type updateViewRequest struct {
	ActiveConversationID *string  `json:"active_conversation_id"`
	SearchQuery          *string  `json:"search_query"`
	KindFilter           *string  `json:"kind_filter" validate:"omitempty,oneof=external internal"`
	EntityFilter         []string `json:"entity_filter"`
}

func (h *ViewHandler) GetView(c echo.Context) error {
	return response.Success(c, h.viewUseCase.Snapshot())
}

func (h *ViewHandler) UpdateView(c echo.Context) error {
	var req updateViewRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	input := usecase.ViewUpdateInput{
		ActiveConversationID: req.ActiveConversationID,
		SearchQuery:          req.SearchQuery,
		EntityFilter:         req.EntityFilter,
	}
	if req.KindFilter != nil {
		kind := entity.ConversationKind(*req.KindFilter)
		input.KindFilter = &kind
	}

	state, err := h.viewUseCase.Update(c.Request().Context(), input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, state)
}

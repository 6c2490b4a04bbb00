package handler

import (
	"github.com/labstack/echo/v4"

	"gemdesk/internal/usecase"
	"gemdesk/pkg/response"
)

type DirectoryHandler struct {
	directoryUseCase *usecase.DirectoryUseCase
}

func NewDirectoryHandler(directoryUseCase *usecase.DirectoryUseCase) *DirectoryHandler {
	return &DirectoryHandler{
		directoryUseCase: directoryUseCase,
	}
}

func (h *DirectoryHandler) GetDirectory(c echo.Context) error {
	return response.Success(c, map[string]interface{}{
		"partners":     h.directoryUseCase.Partners(),
		"team_members": h.directoryUseCase.TeamMembers(),
	})
}

// ReloadDirectory re-fetches both rosters. Partial results are returned with
// the error alongside rather than failing the request.
func (h *DirectoryHandler) ReloadDirectory(c echo.Context) error {
	partners, teamMembers, err := h.directoryUseCase.Load(c.Request().Context())

	payload := map[string]interface{}{
		"partners":     partners,
		"team_members": teamMembers,
	}
	if err != nil {
		payload["last_error"] = err.Error()
	}

	return response.Success(c, payload)
}

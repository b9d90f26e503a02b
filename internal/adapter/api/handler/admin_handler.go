package handler

import (
	"github.com/labstack/echo/v4"

	"gigspace/internal/usecase"
	"gigspace/pkg/response"
	"gigspace/pkg/utils"
)

type AdminHandler struct {
	adminUseCase *usecase.AdminUseCase
	jobUseCase   *usecase.JobUseCase
}

func NewAdminHandler(adminUseCase *usecase.AdminUseCase, jobUseCase *usecase.JobUseCase) *AdminHandler {
	return &AdminHandler{
		adminUseCase: adminUseCase,
		jobUseCase:   jobUseCase,
	}
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	params := utils.GetPaginationParams(c)
	role := c.QueryParam("role")

	users, total, err := h.adminUseCase.ListUsers(c.Request().Context(), role, params.Limit, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, users, total, params.Limit, params.Offset)
}

func (h *AdminHandler) BanUser(c echo.Context) error {
	user, err := h.adminUseCase.BanUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *AdminHandler) UnbanUser(c echo.Context) error {
	user, err := h.adminUseCase.UnbanUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *AdminHandler) PlatformStats(c echo.Context) error {
	stats, err := h.adminUseCase.PlatformStats(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, stats)
}

func (h *AdminHandler) DeleteJob(c echo.Context) error {
	if err := h.jobUseCase.DeleteJob(c.Request().Context(), c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Job deleted",
	})
}

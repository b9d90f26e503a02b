package handler

import (
	"github.com/labstack/echo/v4"

	"gigspace/internal/usecase"
	"gigspace/pkg/response"
	"gigspace/pkg/utils"
)

type JobHandler struct {
	jobUseCase *usecase.JobUseCase
}

func NewJobHandler(jobUseCase *usecase.JobUseCase) *JobHandler {
	return &JobHandler{
		jobUseCase: jobUseCase,
	}
}

type createJobRequest struct {
	Title       string  `json:"title" validate:"required,min=5,max=120"`
	Description string  `json:"description" validate:"required,min=20"`
	Category    string  `json:"category" validate:"required"`
	Budget      float64 `json:"budget" validate:"required,gt=0"`
}

func (h *JobHandler) CreateJob(c echo.Context) error {
	uid := c.Get("uid").(string)

	var req createJobRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	job, err := h.jobUseCase.CreateJob(c.Request().Context(), uid, usecase.CreateJobInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Budget:      req.Budget,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, job)
}

func (h *JobHandler) ListJobs(c echo.Context) error {
	params := utils.GetPaginationParams(c)
	status := c.QueryParam("status")
	category := c.QueryParam("category")

	jobs, total, err := h.jobUseCase.ListJobs(c.Request().Context(), status, category, params.Limit, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, jobs, total, params.Limit, params.Offset)
}

func (h *JobHandler) ListMyJobs(c echo.Context) error {
	uid := c.Get("uid").(string)
	params := utils.GetPaginationParams(c)

	jobs, total, err := h.jobUseCase.ListMyJobs(c.Request().Context(), uid, params.Limit, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, jobs, total, params.Limit, params.Offset)
}

func (h *JobHandler) GetJob(c echo.Context) error {
	job, err := h.jobUseCase.GetJob(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, job)
}

type updateJobRequest struct {
	Title       string  `json:"title" validate:"omitempty,min=5,max=120"`
	Description string  `json:"description" validate:"omitempty,min=20"`
	Category    string  `json:"category"`
	Budget      float64 `json:"budget" validate:"omitempty,gt=0"`
}

func (h *JobHandler) UpdateJob(c echo.Context) error {
	uid := c.Get("uid").(string)

	var req updateJobRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	job, err := h.jobUseCase.UpdateJob(c.Request().Context(), uid, c.Param("id"), usecase.UpdateJobInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Budget:      req.Budget,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, job)
}

func (h *JobHandler) CancelJob(c echo.Context) error {
	uid := c.Get("uid").(string)

	job, err := h.jobUseCase.CancelJob(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, job)
}

func (h *JobHandler) CompleteJob(c echo.Context) error {
	uid := c.Get("uid").(string)

	job, err := h.jobUseCase.CompleteJob(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, job)
}

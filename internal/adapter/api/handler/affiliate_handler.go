package handler

import (
	"github.com/labstack/echo/v4"

	"gigspace/internal/usecase"
	"gigspace/pkg/response"
	"gigspace/pkg/utils"
)

type AffiliateHandler struct {
	affiliateUseCase *usecase.AffiliateUseCase
}

func NewAffiliateHandler(affiliateUseCase *usecase.AffiliateUseCase) *AffiliateHandler {
	return &AffiliateHandler{
		affiliateUseCase: affiliateUseCase,
	}
}

// MyCode returns the caller's referral record, creating one on first use.
func (h *AffiliateHandler) MyCode(c echo.Context) error {
	uid := c.Get("uid").(string)

	affiliate, err := h.affiliateUseCase.GetOrCreate(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, affiliate)
}

// TrackClick is public; referral links hit it before redirecting to the
// signup page.
func (h *AffiliateHandler) TrackClick(c echo.Context) error {
	if err := h.affiliateUseCase.TrackClick(c.Request().Context(), c.Param("code")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Click recorded",
	})
}

func (h *AffiliateHandler) List(c echo.Context) error {
	params := utils.GetPaginationParams(c)

	affiliates, total, err := h.affiliateUseCase.List(c.Request().Context(), params.Limit, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, affiliates, total, params.Limit, params.Offset)
}

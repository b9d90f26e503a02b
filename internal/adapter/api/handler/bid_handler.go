package handler

import (
	"github.com/labstack/echo/v4"

	"gigspace/internal/usecase"
	"gigspace/pkg/response"
	"gigspace/pkg/utils"
)

type BidHandler struct {
	bidUseCase *usecase.BidUseCase
}

func NewBidHandler(bidUseCase *usecase.BidUseCase) *BidHandler {
	return &BidHandler{
		bidUseCase: bidUseCase,
	}
}

type placeBidRequest struct {
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Proposal string  `json:"proposal" validate:"required,min=20"`
}

func (h *BidHandler) PlaceBid(c echo.Context) error {
	uid := c.Get("uid").(string)

	var req placeBidRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	bid, err := h.bidUseCase.PlaceBid(c.Request().Context(), uid, usecase.PlaceBidInput{
		JobID:    c.Param("id"),
		Amount:   req.Amount,
		Proposal: req.Proposal,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, bid)
}

func (h *BidHandler) ListBidsByJob(c echo.Context) error {
	uid := c.Get("uid").(string)
	params := utils.GetPaginationParams(c)

	bids, total, err := h.bidUseCase.ListBidsByJob(c.Request().Context(), uid, c.Param("id"), params.Limit, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, bids, total, params.Limit, params.Offset)
}

func (h *BidHandler) ListMyBids(c echo.Context) error {
	uid := c.Get("uid").(string)
	params := utils.GetPaginationParams(c)

	bids, total, err := h.bidUseCase.ListMyBids(c.Request().Context(), uid, params.Limit, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, bids, total, params.Limit, params.Offset)
}

func (h *BidHandler) AcceptBid(c echo.Context) error {
	uid := c.Get("uid").(string)

	bid, err := h.bidUseCase.AcceptBid(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, bid)
}

func (h *BidHandler) RejectBid(c echo.Context) error {
	uid := c.Get("uid").(string)

	bid, err := h.bidUseCase.RejectBid(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, bid)
}

func (h *BidHandler) WithdrawBid(c echo.Context) error {
	uid := c.Get("uid").(string)

	bid, err := h.bidUseCase.WithdrawBid(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, bid)
}

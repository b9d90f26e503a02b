package handler

import (
	"github.com/labstack/echo/v4"

	"gigspace/internal/usecase"
	"gigspace/pkg/response"
	"gigspace/pkg/utils"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type createConversationRequest struct {
	RecipientID    string `json:"recipient_id" validate:"required"`
	JobID          string `json:"job_id"`
	InitialMessage string `json:"initial_message" validate:"omitempty,max=2000"`
}

func (h *ChatHandler) CreateConversation(c echo.Context) error {
	uid := c.Get("uid").(string)

	var req createConversationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	conversation, err := h.chatUseCase.CreateConversation(c.Request().Context(), uid, usecase.CreateConversationInput{
		RecipientID:    req.RecipientID,
		JobID:          req.JobID,
		InitialMessage: req.InitialMessage,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, conversation)
}

func (h *ChatHandler) CreateSupportConversation(c echo.Context) error {
	uid := c.Get("uid").(string)

	conversation, err := h.chatUseCase.CreateSupportConversation(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, conversation)
}

func (h *ChatHandler) ListConversations(c echo.Context) error {
	uid := c.Get("uid").(string)
	params := utils.GetPaginationParams(c)

	conversations, total, err := h.chatUseCase.ListConversations(c.Request().Context(), uid, params.Limit, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, conversations, total, params.Limit, params.Offset)
}

func (h *ChatHandler) GetConversation(c echo.Context) error {
	uid := c.Get("uid").(string)

	conversation, err := h.chatUseCase.GetConversation(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conversation)
}

func (h *ChatHandler) GetMessages(c echo.Context) error {
	uid := c.Get("uid").(string)
	params := utils.GetPaginationParams(c)

	messages, total, err := h.chatUseCase.GetMessages(c.Request().Context(), uid, c.Param("id"), params.Limit, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, messages, total, params.Limit, params.Offset)
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
	Type    string `json:"type" validate:"omitempty,oneof=text offer system"`
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	uid := c.Get("uid").(string)

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), uid, usecase.SendMessageInput{
		ConversationID: c.Param("id"),
		Content:        req.Content,
		Type:           req.Type,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

type sendOfferRequest struct {
	Content string  `json:"content" validate:"required,max=2000"`
	Amount  float64 `json:"amount" validate:"required,gt=0"`
}

func (h *ChatHandler) SendOffer(c echo.Context) error {
	uid := c.Get("uid").(string)

	var req sendOfferRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.chatUseCase.SendOffer(c.Request().Context(), uid, usecase.SendOfferInput{
		ConversationID: c.Param("id"),
		Content:        req.Content,
		Amount:         req.Amount,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *ChatHandler) MarkConversationRead(c echo.Context) error {
	uid := c.Get("uid").(string)

	if err := h.chatUseCase.MarkConversationRead(c.Request().Context(), uid, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Conversation marked as read",
	})
}

func (h *ChatHandler) MarkMessageRead(c echo.Context) error {
	uid := c.Get("uid").(string)

	if err := h.chatUseCase.MarkMessageRead(c.Request().Context(), uid, c.Param("id"), c.Param("messageId")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Message marked as read",
	})
}
